package abi

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ResultHeaderSize is the size of the result header.
const ResultHeaderSize = 20

// ResultHeader precedes the result payload.
type ResultHeader struct {
	Status       Status
	Index        uint32
	Capped       uint32
	MaxDeviation float32
	PayloadLen   uint32
}

// Put writes h to the first ResultHeaderSize bytes of buf.
func (h ResultHeader) Put(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], uint32(h.Status))
	binary.LittleEndian.PutUint32(buf[4:], h.Index)
	binary.LittleEndian.PutUint32(buf[8:], h.Capped)
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(h.MaxDeviation))
	binary.LittleEndian.PutUint32(buf[16:], h.PayloadLen)
}

// ReadResultHeader decodes a header from buf.
func ReadResultHeader(buf []byte) (ResultHeader, error) {
	if len(buf) < ResultHeaderSize {
		return ResultHeader{}, ErrTruncated
	}
	return ResultHeader{
		Status:       Status(binary.LittleEndian.Uint32(buf[0:])),
		Index:        binary.LittleEndian.Uint32(buf[4:]),
		Capped:       binary.LittleEndian.Uint32(buf[8:]),
		MaxDeviation: math.Float32frombits(binary.LittleEndian.Uint32(buf[12:])),
		PayloadLen:   binary.LittleEndian.Uint32(buf[16:]),
	}, nil
}

// AppendU32 appends v to dst.
func AppendU32(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

// AppendPolygon appends a polygon record. xy holds interleaved coordinates.
func AppendPolygon(dst []byte, xy []float32) []byte {
	dst = AppendU32(dst, uint32(len(xy)/2))
	for _, v := range xy {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// PayloadReader decodes a result payload.
type PayloadReader struct {
	buf []byte
	off int
}

// NewPayloadReader returns a reader over payload.
func NewPayloadReader(payload []byte) *PayloadReader {
	return &PayloadReader{buf: payload}
}

// Done reports whether all bytes have been consumed.
func (r *PayloadReader) Done() bool {
	return r.off == len(r.buf)
}

// U32 reads a count.
func (r *PayloadReader) U32() (uint32, error) {
	if r.off+4 > len(r.buf) {
		return 0, ErrTruncated
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

// Polygon reads a polygon record and calls fn for each vertex.
func (r *PayloadReader) Polygon(fn func(x, y float32)) (int, error) {
	n, err := r.U32()
	if err != nil {
		return 0, err
	}
	if uint64(n)*8 > uint64(len(r.buf)-r.off) {
		return 0, fmt.Errorf("%w: polygon of %d vertices", ErrTruncated, n)
	}
	for range n {
		x := math.Float32frombits(binary.LittleEndian.Uint32(r.buf[r.off:]))
		y := math.Float32frombits(binary.LittleEndian.Uint32(r.buf[r.off+4:]))
		r.off += 8
		fn(x, y)
	}
	return int(n), nil
}
