package text

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// gotextParser implements FontParser using go-text/typesetting.
// Shaping goes through its HarfBuzz port, so ligatures, kerning
// (kern and GPOS) and mark positioning are applied.
type gotextParser struct{}

// Parse implements FontParser.Parse.
func (gotextParser) Parse(data []byte) (ParsedFont, error) {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("text: failed to parse font: %w", err)
	}
	return &gotextParsedFont{
		font:   face.Font,
		family: face.Describe().Family,
		upem:   int(face.Upem()),
		shaperPool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
	}, nil
}

// gotextParsedFont implements ParsedFont.
//
// font.Font is read-only and safe for concurrent use; font.Face and
// HarfbuzzShaper are not, so each call creates a Face and borrows a
// pooled shaper.
type gotextParsedFont struct {
	font       *font.Font
	family     string
	upem       int
	shaperPool sync.Pool
}

// Name implements ParsedFont.Name.
func (f *gotextParsedFont) Name() string {
	return f.family
}

// UnitsPerEm implements ParsedFont.UnitsPerEm.
func (f *gotextParsedFont) UnitsPerEm() int {
	return f.upem
}

// Metrics implements ParsedFont.Metrics.
func (f *gotextParsedFont) Metrics() FontMetrics {
	ext, ok := font.NewFace(f.font).FontHExtents()
	if !ok {
		return FontMetrics{}
	}
	return FontMetrics{
		Ascender:  float64(ext.Ascender),
		Descender: float64(ext.Descender),
		LineGap:   float64(ext.LineGap),
	}
}

// Shape implements ParsedFont.Shape. Shaping runs at a size of one unit
// per font unit and positions are scaled afterwards.
func (f *gotextParsedFont) Shape(runes []rune, size float64) []Glyph {
	if len(runes) == 0 {
		return nil
	}

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(f.font),
		Size:      fixed.I(f.upem),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := f.shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	f.shaperPool.Put(hb)

	s := size / float64(f.upem)
	glyphs := make([]Glyph, len(output.Glyphs))
	var x float64
	for i, g := range output.Glyphs {
		advance := fixedToFloat64(g.Advance) * s
		glyphs[i] = Glyph{
			GID:     GlyphID(uint16(g.GlyphID)), //nolint:gosec // sfnt glyph IDs fit in 16 bits
			Cluster: g.TextIndex(),
			X:       x + fixedToFloat64(g.XOffset)*s,
			Y:       fixedToFloat64(g.YOffset) * s,
			Advance: advance,
		}
		x += advance
	}
	return glyphs
}

// Outline implements ParsedFont.Outline.
func (f *gotextParsedFont) Outline(gid GlyphID, size float64) (*GlyphOutline, error) {
	face := font.NewFace(f.font)
	data, ok := face.GlyphData(font.GID(gid)).(font.GlyphOutline)
	if !ok {
		return nil, &GlyphError{GID: gid, Err: fmt.Errorf("no vector outline")}
	}

	s := float32(size / float64(f.upem))
	outline := &GlyphOutline{
		Segments: make([]OutlineSegment, 0, len(data.Segments)),
		Advance:  face.HorizontalAdvance(font.GID(gid)) * s,
		GID:      gid,
	}
	for _, seg := range data.Segments {
		var out OutlineSegment
		switch seg.Op {
		case opentype.SegmentOpMoveTo:
			out.Op = OutlineOpMoveTo
		case opentype.SegmentOpLineTo:
			out.Op = OutlineOpLineTo
		case opentype.SegmentOpQuadTo:
			out.Op = OutlineOpQuadTo
		case opentype.SegmentOpCubeTo:
			out.Op = OutlineOpCubicTo
		default:
			return nil, &GlyphError{GID: gid, Err: fmt.Errorf("unknown segment op %d", seg.Op)}
		}
		for i := range out.Op.points() {
			out.Points[i] = OutlinePoint{X: seg.Args[i].X * s, Y: seg.Args[i].Y * s}
		}
		outline.Segments = append(outline.Segments, out)
	}
	return outline, nil
}

// detectScript inspects the runes and returns the script of the first
// non-space character. Mixed-script text is shaped with that one script.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
