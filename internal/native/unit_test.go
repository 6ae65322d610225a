package native

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/glyphpoly/abi"
)

type cmd struct {
	tag    abi.Tag
	coords []float32
}

func encode(cmds ...cmd) []byte {
	size := abi.CountSize
	for _, c := range cmds {
		size += abi.RecordSize(c.tag)
	}
	buf := make([]byte, size)
	abi.PutCount(buf, uint32(len(cmds)))
	n := abi.CountSize
	for _, c := range cmds {
		n += abi.PutCommand(buf[n:], c.tag, c.coords)
	}
	return buf
}

func moveTo(x, y float32) cmd { return cmd{abi.TagMoveTo, []float32{x, y}} }
func lineTo(x, y float32) cmd { return cmd{abi.TagLineTo, []float32{x, y}} }
func quadTo(cx, cy, x, y float32) cmd {
	return cmd{abi.TagQuadTo, []float32{cx, cy, x, y}}
}
func cubicTo(c1x, c1y, c2x, c2y, x, y float32) cmd {
	return cmd{abi.TagCubicTo, []float32{c1x, c1y, c2x, c2y, x, y}}
}
func closePath() cmd { return cmd{abi.TagClose, nil} }

var params = abi.Params{Format: abi.FormatTrueType, PPC: 8, Eps: 0.1}

// compile runs input through u and returns the header and payload it wrote.
func compile(t *testing.T, u *Unit, input []byte, p abi.Params) (uint32, abi.ResultHeader, []byte) {
	t.Helper()
	ctx := context.Background()

	off, err := u.Reserve(ctx, uint32(len(input)))
	require.NoError(t, err)
	require.True(t, u.Memory().Write(off, input))

	res, err := u.Compile(ctx, off, uint32(len(input)), p)
	require.NoError(t, err)

	raw, ok := u.Memory().Read(res, abi.ResultHeaderSize)
	require.True(t, ok)
	hdr, err := abi.ReadResultHeader(raw)
	require.NoError(t, err)

	payload, ok := u.Memory().Read(res+abi.ResultHeaderSize, hdr.PayloadLen)
	require.True(t, ok)
	return res, hdr, payload
}

func TestUnitSquare(t *testing.T) {
	u := New(DefaultPages, DefaultMaxPages)
	input := encode(moveTo(0, 0), lineTo(10, 0), lineTo(10, 10), lineTo(0, 10), closePath())

	off, hdr, payload := compile(t, u, input, params)
	assert.Equal(t, abi.StatusOK, hdr.Status)
	assert.Zero(t, off%8, "result offset not aligned")
	assert.GreaterOrEqual(t, off, uint32(inputOffset+len(input)), "result overlaps input")

	want := abi.AppendU32(nil, 1)
	want = abi.AppendU32(want, 0)
	want = abi.AppendPolygon(want, []float32{0, 0, 10, 0, 10, 10, 0, 10})
	assert.Equal(t, want, payload)
}

func TestUnitLeavesInputIntact(t *testing.T) {
	u := New(DefaultPages, DefaultMaxPages)
	input := encode(moveTo(0, 0), quadTo(5, 10, 10, 0), closePath())
	compile(t, u, input, params)

	got, ok := u.Memory().Read(inputOffset, uint32(len(input)))
	require.True(t, ok)
	assert.Equal(t, input, got)
}

func TestUnitStatuses(t *testing.T) {
	square := encode(moveTo(0, 0), lineTo(1, 0), lineTo(1, 1), closePath())
	tests := []struct {
		name   string
		input  []byte
		params abi.Params
		status abi.Status
		index  uint32
	}{
		{"cubic under truetype", encode(moveTo(0, 0), lineTo(1, 0), cubicTo(1, 1, 0, 1, 0, 0)), params, abi.StatusUnsupportedCurve, 2},
		{"line before move", encode(lineTo(1, 0)), params, abi.StatusMalformed, 0},
		{"quad before move", encode(quadTo(1, 0, 1, 1)), params, abi.StatusMalformed, 0},
		{"infinite coordinate", encode(moveTo(0, float32(math.Inf(1)))), params, abi.StatusMalformed, 0},
		{"truncated", square[:len(square)-2], params, abi.StatusMalformed, 2},
		{"unknown tag", append(encode(moveTo(0, 0))[:4], 9), params, abi.StatusMalformed, 0},
		{"zero ppc", square, abi.Params{Format: abi.FormatTrueType, PPC: 0, Eps: 1}, abi.StatusBadParameters, 0},
		{"ppc too large", square, abi.Params{Format: abi.FormatTrueType, PPC: abi.MaxPPC + 1, Eps: 1}, abi.StatusBadParameters, 0},
		{"negative eps", square, abi.Params{Format: abi.FormatTrueType, PPC: 4, Eps: -1}, abi.StatusBadParameters, 0},
		{"nan eps", square, abi.Params{Format: abi.FormatTrueType, PPC: 4, Eps: float32(math.NaN())}, abi.StatusBadParameters, 0},
		{"unknown format", square, abi.Params{PPC: 4, Eps: 1}, abi.StatusBadParameters, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := New(DefaultPages, DefaultMaxPages)
			_, hdr, payload := compile(t, u, tt.input, tt.params)
			assert.Equal(t, tt.status, hdr.Status)
			assert.Equal(t, tt.index, hdr.Index)
			assert.Empty(t, payload, "failed compile must not emit shapes")
		})
	}
}

func TestUnitStrictTolerance(t *testing.T) {
	u := New(DefaultPages, DefaultMaxPages)
	input := encode(moveTo(0, 0), quadTo(50, 100, 100, 0), closePath())

	p := abi.Params{Format: abi.FormatTrueType, PPC: 2, Eps: 1e-3}
	_, hdr, _ := compile(t, u, input, p)
	assert.Equal(t, abi.StatusOK, hdr.Status)
	assert.Equal(t, uint32(1), hdr.Capped)

	p.Flags = abi.FlagStrictTolerance
	_, hdr, payload := compile(t, u, input, p)
	assert.Equal(t, abi.StatusToleranceExceeded, hdr.Status)
	assert.Equal(t, uint32(1), hdr.Capped)
	assert.Empty(t, payload)
}

func TestUnitCubicUnderCFF(t *testing.T) {
	u := New(DefaultPages, DefaultMaxPages)
	input := encode(moveTo(0, 0), cubicTo(0, 100, 100, 100, 100, 0), closePath())
	_, hdr, payload := compile(t, u, input, abi.Params{Format: abi.FormatCFF, PPC: 16, Eps: 0.5})
	require.Equal(t, abi.StatusOK, hdr.Status)

	r := abi.NewPayloadReader(payload)
	count, err := r.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), count)
}

func TestUnitGrowsForLargeInput(t *testing.T) {
	u := New(1, 64)
	cmds := []cmd{moveTo(0, 0)}
	for i := range 20000 {
		cmds = append(cmds, lineTo(float32(i), float32(i%7)))
	}
	input := encode(cmds...)
	require.Greater(t, len(input), abi.PageSize)

	_, hdr, _ := compile(t, u, input, params)
	assert.Equal(t, abi.StatusOK, hdr.Status)
}

func TestUnitReserveLimit(t *testing.T) {
	u := New(1, 2)
	_, err := u.Reserve(context.Background(), 3*abi.PageSize)
	assert.ErrorIs(t, err, abi.ErrOutOfMemory)
}

func TestUnitCompileOutOfRange(t *testing.T) {
	u := New(1, 1)
	res, err := u.Compile(context.Background(), abi.PageSize-4, 100, params)
	require.NoError(t, err)

	raw, _ := u.Memory().Read(res, abi.ResultHeaderSize)
	hdr, err := abi.ReadResultHeader(raw)
	require.NoError(t, err)
	assert.Equal(t, abi.StatusMalformed, hdr.Status)
}

func TestUnitClosed(t *testing.T) {
	u := New(DefaultPages, DefaultMaxPages)
	require.NoError(t, u.Close(context.Background()))

	_, err := u.Reserve(context.Background(), 4)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = u.Compile(context.Background(), inputOffset, 4, params)
	assert.ErrorIs(t, err, ErrClosed)
}
