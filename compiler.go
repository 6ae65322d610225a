package glyphpoly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/gogpu/glyphpoly/abi"
)

// Compiler is the host side of the compiler boundary.
//
// It encodes path commands into a host buffer, copies the bytes into the
// memory of its unit, invokes the unit and decodes the shapes the unit wrote
// back. A Compiler runs at most one compile at a time; concurrent calls are
// serialized. Use a Pool for parallel compilation.
type Compiler struct {
	mu     sync.Mutex
	unit   abi.Unit
	buf    []byte
	opts   options
	closed bool
}

// NewCompiler creates a Compiler. Without WithUnit it runs an in-process unit.
func NewCompiler(opts ...Option) *Compiler {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Compiler{
		unit: o.newUnit(),
		buf:  make([]byte, o.bufferSize),
		opts: o,
	}
}

// Compile compiles a command sequence into shapes.
//
// ppc is the maximum number of vertices per curve segment and eps the
// maximum deviation from the true curve, in coordinate units. ppc wins when
// the two conflict; see CompileResult for how that is reported.
func (c *Compiler) Compile(ctx context.Context, cmds []Command, f Format, ppc int, eps float32) ([]Shape, error) {
	r, err := c.CompileResult(ctx, cmds, f, ppc, eps)
	if err != nil {
		return nil, err
	}
	return r.Shapes, nil
}

// CompileResult is Compile returning tolerance statistics as well.
// The encode buffer grows as needed up to the configured maximum.
func (c *Compiler) CompileResult(ctx context.Context, cmds []Command, f Format, ppc int, eps float32) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	n, err := c.encode(cmds)
	if err != nil {
		return nil, err
	}
	return c.compileEncoded(ctx, c.buf, n, f, ppc, eps)
}

// CompileEncoded compiles the first bytesUsed bytes of buf, produced by
// Encode. buf is not modified.
func (c *Compiler) CompileEncoded(ctx context.Context, buf []byte, bytesUsed int, f Format, ppc int, eps float32) ([]Shape, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if bytesUsed < 0 || bytesUsed > len(buf) {
		return nil, fmt.Errorf("glyphpoly: bytesUsed %d outside buffer of %d bytes", bytesUsed, len(buf))
	}

	r, err := c.compileEncoded(ctx, buf, bytesUsed, f, ppc, eps)
	if err != nil {
		return nil, err
	}
	return r.Shapes, nil
}

// Close releases the unit.
func (c *Compiler) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.buf = nil
	return c.unit.Close(ctx)
}

// encode writes cmds into c.buf, doubling the buffer on ErrBufferTooSmall.
func (c *Compiler) encode(cmds []Command) (int, error) {
	for {
		n, err := Encode(cmds, c.buf)
		var small *BufferTooSmallError
		if !errors.As(err, &small) {
			return n, err
		}

		size := max(len(c.buf), 1)
		for size < small.Required {
			size *= 2
		}
		if size > c.opts.maxBufferSize {
			if small.Required > c.opts.maxBufferSize {
				return 0, fmt.Errorf("%w: need %d bytes, maximum %d", ErrBufferTooLarge, small.Required, c.opts.maxBufferSize)
			}
			size = c.opts.maxBufferSize
		}
		Logger().Debug("glyphpoly: growing encode buffer", "from", len(c.buf), "to", size)
		c.buf = make([]byte, size)
	}
}

func (c *Compiler) compileEncoded(ctx context.Context, buf []byte, bytesUsed int, f Format, ppc int, eps float32) (*Result, error) {
	if uint64(bytesUsed) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrBufferTooLarge, bytesUsed)
	}
	params := abi.Params{
		Format: f,
		PPC:    clampPPC(ppc),
		Eps:    eps,
	}
	if c.opts.strict {
		params.Flags |= abi.FlagStrictTolerance
	}

	off, err := c.unit.Reserve(ctx, uint32(bytesUsed))
	if err != nil {
		return nil, fmt.Errorf("glyphpoly: reserve input: %w", err)
	}
	mem := c.unit.Memory()
	if !mem.Write(off, buf[:bytesUsed]) {
		return nil, fmt.Errorf("glyphpoly: input region at %d too small for %d bytes", off, bytesUsed)
	}

	resOff, err := c.unit.Compile(ctx, off, uint32(bytesUsed), params)
	if err != nil {
		return nil, fmt.Errorf("glyphpoly: unit: %w", err)
	}

	res, err := decodeResult(mem, resOff)
	if err != nil {
		return nil, err
	}

	log := Logger()
	if res.Stats.CappedSegments > 0 {
		log.Warn("glyphpoly: curves capped by points-per-curve before reaching eps",
			"segments", res.Stats.CappedSegments,
			"ppc", ppc,
			"eps", eps,
			"maxDeviation", res.Stats.MaxDeviation)
	}
	if log.Enabled(ctx, slog.LevelDebug) {
		log.Debug("glyphpoly: compiled",
			"bytes", bytesUsed,
			"format", f.String(),
			"shapes", len(res.Shapes))
	}
	return res, nil
}

// decodeResult reads the result the unit left at off. It returns either
// every shape or an error, never a partial set.
func decodeResult(mem abi.Memory, off uint32) (*Result, error) {
	raw, ok := mem.Read(off, abi.ResultHeaderSize)
	if !ok {
		return nil, fmt.Errorf("%w: header at %d out of range", ErrCorruptResult, off)
	}
	hdr, err := abi.ReadResultHeader(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptResult, err)
	}
	if hdr.Status != abi.StatusOK {
		return nil, &CompileError{Status: hdr.Status, Command: int(hdr.Index)}
	}

	res := &Result{Stats: Stats{
		CappedSegments: hdr.Capped,
		MaxDeviation:   hdr.MaxDeviation,
	}}
	if hdr.PayloadLen == 0 {
		return res, nil
	}
	payload, ok := mem.Read(off+abi.ResultHeaderSize, hdr.PayloadLen)
	if !ok {
		return nil, fmt.Errorf("%w: payload of %d bytes out of range", ErrCorruptResult, hdr.PayloadLen)
	}
	shapes, err := decodeShapes(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptResult, err)
	}
	res.Shapes = shapes
	return res, nil
}

func decodeShapes(payload []byte) ([]Shape, error) {
	r := abi.NewPayloadReader(payload)
	count, err := r.U32()
	if err != nil {
		return nil, err
	}
	if uint64(count)*8 > uint64(len(payload)) {
		return nil, fmt.Errorf("shape count %d exceeds payload", count)
	}

	shapes := make([]Shape, 0, count)
	readPoly := func() (Polygon, error) {
		var p Polygon
		_, err := r.Polygon(func(x, y float32) {
			p = append(p, Vertex{x, y})
		})
		return p, err
	}
	for range count {
		holes, err := r.U32()
		if err != nil {
			return nil, err
		}
		fill, err := readPoly()
		if err != nil {
			return nil, err
		}
		s := Shape{Fill: fill}
		if holes > 0 {
			s.Holes = make([]Polygon, 0, min(holes, 64))
		}
		for range holes {
			h, err := readPoly()
			if err != nil {
				return nil, err
			}
			s.Holes = append(s.Holes, h)
		}
		shapes = append(shapes, s)
	}
	if !r.Done() {
		return nil, errors.New("trailing bytes after last shape")
	}
	return shapes, nil
}

func clampPPC(ppc int) uint32 {
	if ppc <= 0 {
		return 0
	}
	if uint64(ppc) > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(ppc)
}
