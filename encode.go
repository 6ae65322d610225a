package glyphpoly

import (
	"fmt"

	"github.com/gogpu/glyphpoly/abi"
)

// EncodedSize returns the number of bytes Encode needs for cmds.
func EncodedSize(cmds []Command) (int, error) {
	n := abi.CountSize
	for i, c := range cmds {
		size := abi.RecordSize(abi.Tag(c.Op))
		if size < 0 {
			return 0, fmt.Errorf("%w: command %d has op %d", ErrInvalidCommand, i, c.Op)
		}
		n += size
	}
	return n, nil
}

// Encode serializes cmds into buf and returns the number of bytes written.
//
// Each command becomes a tag byte followed by its coordinates as float32,
// after a uint32 command count. Coordinates are written as given.
// If buf is too small, Encode returns a *BufferTooSmallError and leaves buf
// untouched.
func Encode(cmds []Command, buf []byte) (int, error) {
	need, err := EncodedSize(cmds)
	if err != nil {
		return 0, err
	}
	if need > len(buf) {
		return 0, &BufferTooSmallError{Required: need, Capacity: len(buf)}
	}

	abi.PutCount(buf, uint32(len(cmds)))
	n := abi.CountSize
	var coords [6]float32
	for _, c := range cmds {
		for i, p := range c.Points {
			coords[2*i], coords[2*i+1] = p.X, p.Y
		}
		n += abi.PutCommand(buf[n:], abi.Tag(c.Op), coords[:])
	}
	return n, nil
}

// DecodeCommands reconstructs the command sequence from an encoded buffer.
// buf must be exactly the bytes reported by Encode.
func DecodeCommands(buf []byte) ([]Command, error) {
	r := abi.NewCommandReader(buf)
	var cmds []Command
	for r.Next() {
		if cmds == nil {
			cmds = make([]Command, 0, r.Count())
		}
		c := Command{Op: Op(r.Tag())}
		xy := r.Coords()
		for i := 0; i < len(xy)/2; i++ {
			c.Points[i] = Vertex{X: xy[2*i], Y: xy[2*i+1]}
		}
		cmds = append(cmds, c)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("glyphpoly: decode command %d: %w", r.Index(), err)
	}
	return cmds, nil
}
