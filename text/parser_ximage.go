package text

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ximageParser implements FontParser using golang.org/x/image/font/sfnt.
type ximageParser struct{}

// Parse implements FontParser.Parse.
func (ximageParser) Parse(data []byte) (ParsedFont, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: failed to parse font: %w", err)
	}
	return &ximageParsedFont{
		font: f,
		upem: int(f.UnitsPerEm()),
		bufs: sync.Pool{New: func() any { return new(sfnt.Buffer) }},
	}, nil
}

// ximageParsedFont implements ParsedFont using sfnt.Font.
//
// sfnt.Font is safe for concurrent use as long as every goroutine passes
// its own Buffer, so buffers are pooled.
//
// All queries run at a ppem equal to the units per em, which yields
// unhinted values in font units; scaling to the requested size happens
// in floating point.
type ximageParsedFont struct {
	font *sfnt.Font
	upem int
	bufs sync.Pool
}

func (f *ximageParsedFont) ppem() fixed.Int26_6 {
	return fixed.I(f.upem)
}

func (f *ximageParsedFont) scale(size float64) float64 {
	return size / float64(f.upem)
}

// Name implements ParsedFont.Name.
func (f *ximageParsedFont) Name() string {
	buf := f.bufs.Get().(*sfnt.Buffer)
	defer f.bufs.Put(buf)
	for _, id := range []sfnt.NameID{sfnt.NameIDFamily, sfnt.NameIDFull} {
		if name, err := f.font.Name(buf, id); err == nil && name != "" {
			return name
		}
	}
	return ""
}

// UnitsPerEm implements ParsedFont.UnitsPerEm.
func (f *ximageParsedFont) UnitsPerEm() int {
	return f.upem
}

// Metrics implements ParsedFont.Metrics.
func (f *ximageParsedFont) Metrics() FontMetrics {
	buf := f.bufs.Get().(*sfnt.Buffer)
	defer f.bufs.Put(buf)

	m, err := f.font.Metrics(buf, f.ppem(), font.HintingNone)
	if err != nil {
		return FontMetrics{}
	}
	ascent := fixedToFloat64(m.Ascent)
	descent := fixedToFloat64(m.Descent)
	return FontMetrics{
		Ascender:  ascent,
		Descender: -descent,
		LineGap:   fixedToFloat64(m.Height) - ascent - descent,
	}
}

// Shape implements ParsedFont.Shape. Each rune maps to its nominal glyph;
// pair kerning from the kern table is added to the advance of the left glyph.
func (f *ximageParsedFont) Shape(runes []rune, size float64) []Glyph {
	if len(runes) == 0 {
		return nil
	}
	buf := f.bufs.Get().(*sfnt.Buffer)
	defer f.bufs.Put(buf)

	s := f.scale(size)
	ppem := f.ppem()
	glyphs := make([]Glyph, len(runes))
	var x float64
	for i, r := range runes {
		gid, err := f.font.GlyphIndex(buf, r)
		if err != nil {
			gid = 0
		}
		if i > 0 {
			prev := &glyphs[i-1]
			if k, err := f.font.Kern(buf, sfnt.GlyphIndex(prev.GID), gid, ppem, font.HintingNone); err == nil {
				kern := fixedToFloat64(k) * s
				prev.Advance += kern
				x += kern
			}
		}
		var advance float64
		if adv, err := f.font.GlyphAdvance(buf, gid, ppem, font.HintingNone); err == nil {
			advance = fixedToFloat64(adv) * s
		}
		glyphs[i] = Glyph{GID: GlyphID(gid), Cluster: i, X: x, Advance: advance}
		x += advance
	}
	return glyphs
}

// Outline implements ParsedFont.Outline.
func (f *ximageParsedFont) Outline(gid GlyphID, size float64) (*GlyphOutline, error) {
	buf := f.bufs.Get().(*sfnt.Buffer)
	defer f.bufs.Put(buf)

	ppem := f.ppem()
	// Segments alias buf and must be converted before buf is reused.
	segments, err := f.font.LoadGlyph(buf, sfnt.GlyphIndex(gid), ppem, nil)
	if err != nil {
		return nil, &GlyphError{GID: gid, Err: err}
	}

	s := f.scale(size)
	outline := &GlyphOutline{
		Segments: make([]OutlineSegment, 0, len(segments)),
		GID:      gid,
	}
	for _, seg := range segments {
		var out OutlineSegment
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			out.Op = OutlineOpMoveTo
		case sfnt.SegmentOpLineTo:
			out.Op = OutlineOpLineTo
		case sfnt.SegmentOpQuadTo:
			out.Op = OutlineOpQuadTo
		case sfnt.SegmentOpCubeTo:
			out.Op = OutlineOpCubicTo
		default:
			return nil, &GlyphError{GID: gid, Err: fmt.Errorf("unknown segment op %d", seg.Op)}
		}
		for i := range out.Op.points() {
			out.Points[i] = scalePoint(seg.Args[i], s)
		}
		outline.Segments = append(outline.Segments, out)
	}

	if adv, err := f.font.GlyphAdvance(buf, sfnt.GlyphIndex(gid), ppem, font.HintingNone); err == nil {
		outline.Advance = float32(fixedToFloat64(adv) * s)
	}
	return outline, nil
}

// scalePoint converts a y-down sfnt point to a y-up outline point.
func scalePoint(p fixed.Point26_6, s float64) OutlinePoint {
	return OutlinePoint{
		X: float32(fixedToFloat64(p.X) * s),
		Y: float32(-fixedToFloat64(p.Y) * s),
	}
}

// fixedToFloat64 converts fixed.Int26_6 to float64.
func fixedToFloat64(x fixed.Int26_6) float64 {
	return float64(x) / 64.0
}
