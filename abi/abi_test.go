package abi

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagPoints(t *testing.T) {
	tests := []struct {
		tag  Tag
		want int
	}{
		{TagMoveTo, 1},
		{TagLineTo, 1},
		{TagQuadTo, 2},
		{TagCubicTo, 3},
		{TagClose, 0},
		{Tag(9), -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.tag.Points(), "tag %d", tt.tag)
		if tt.want >= 0 {
			assert.Equal(t, 1+8*tt.want, RecordSize(tt.tag))
		} else {
			assert.Equal(t, -1, RecordSize(tt.tag))
		}
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"truetype", "quadratic"} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, FormatTrueType, f)
	}
	for _, s := range []string{"cff", "cubic"} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		assert.Equal(t, FormatCFF, f)
	}
	_, err := ParseFormat("type1")
	assert.Error(t, err)

	assert.False(t, FormatUnknown.Valid())
	assert.Equal(t, "cff", FormatCFF.String())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "tolerance exceeded", StatusToleranceExceeded.String())
	assert.Equal(t, "status(42)", Status(42).String())
}

// buildBuffer writes a command buffer by hand, independent of PutCommand.
func buildBuffer(count uint32, records ...[]byte) []byte {
	buf := binary.LittleEndian.AppendUint32(nil, count)
	for _, r := range records {
		buf = append(buf, r...)
	}
	return buf
}

func record(t Tag, coords ...float32) []byte {
	b := []byte{byte(t)}
	for _, c := range coords {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(c))
	}
	return b
}

func TestPutCommandLayout(t *testing.T) {
	buf := make([]byte, 32)
	n := PutCommand(buf, TagQuadTo, []float32{1, 2, 3, 4, 99, 99})
	require.Equal(t, 17, n)
	assert.Equal(t, record(TagQuadTo, 1, 2, 3, 4), buf[:n])

	n = PutCommand(buf, TagClose, nil)
	assert.Equal(t, 1, n)
	assert.Equal(t, byte(TagClose), buf[0])
}

func TestCommandReader(t *testing.T) {
	buf := buildBuffer(3,
		record(TagMoveTo, 1, 2),
		record(TagCubicTo, 3, 4, 5, 6, 7, 8),
		record(TagClose),
	)
	r := NewCommandReader(buf)

	var tags []Tag
	var coords [][]float32
	for r.Next() {
		tags = append(tags, r.Tag())
		coords = append(coords, append([]float32(nil), r.Coords()...))
	}
	require.NoError(t, r.Err())
	assert.Equal(t, 3, r.Count())
	assert.Equal(t, []Tag{TagMoveTo, TagCubicTo, TagClose}, tags)
	assert.Equal(t, [][]float32{{1, 2}, {3, 4, 5, 6, 7, 8}, nil}, coords)
}

func TestCommandReaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		buf   []byte
		err   error
		index int
	}{
		{"empty", nil, ErrTruncated, 0},
		{"short header", []byte{1, 0}, ErrTruncated, 0},
		{"missing record", buildBuffer(2, record(TagMoveTo, 0, 0)), ErrTruncated, 1},
		{"cut record", buildBuffer(1, record(TagLineTo, 1, 2)[:5]), ErrTruncated, 0},
		{"unknown tag", buildBuffer(1, []byte{7}), ErrUnknownTag, 0},
		{"trailing", append(buildBuffer(1, record(TagClose)), 0), ErrTrailingBytes, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewCommandReader(tt.buf)
			for r.Next() {
			}
			assert.ErrorIs(t, r.Err(), tt.err)
			assert.Equal(t, tt.index, max(r.Index(), 0))
		})
	}
}

func TestCommandReaderZeroCommands(t *testing.T) {
	r := NewCommandReader(buildBuffer(0))
	assert.False(t, r.Next())
	assert.NoError(t, r.Err())
}

func TestResultHeader(t *testing.T) {
	h := ResultHeader{
		Status:       StatusUnsupportedCurve,
		Index:        7,
		Capped:       3,
		MaxDeviation: 0.25,
		PayloadLen:   40,
	}
	buf := make([]byte, ResultHeaderSize)
	h.Put(buf)
	assert.Equal(t, uint32(StatusUnsupportedCurve), binary.LittleEndian.Uint32(buf[0:]))
	assert.Equal(t, uint32(40), binary.LittleEndian.Uint32(buf[16:]))

	got, err := ReadResultHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, h, got)

	_, err = ReadResultHeader(buf[:19])
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestPayloadReader(t *testing.T) {
	payload := AppendU32(nil, 1)
	payload = AppendPolygon(payload, []float32{0, 0, 1, 0, 1, 1})

	r := NewPayloadReader(payload)
	n, err := r.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), n)

	var got []float32
	count, err := r.Polygon(func(x, y float32) { got = append(got, x, y) })
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, []float32{0, 0, 1, 0, 1, 1}, got)
	assert.True(t, r.Done())
}

func TestPayloadReaderOversizedPolygon(t *testing.T) {
	payload := AppendU32(nil, 1<<30)
	r := NewPayloadReader(payload)
	_, err := r.Polygon(func(x, y float32) {})
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestFinite(t *testing.T) {
	assert.True(t, Finite(1.5))
	assert.False(t, Finite(float32(math.NaN())))
	assert.False(t, Finite(float32(math.Inf(-1))))
}
