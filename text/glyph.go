package text

// GlyphID is a unique identifier for a glyph within a font.
// The glyph ID is assigned by the font file and is font-specific.
type GlyphID uint16

// Glyph is a shaped glyph placed on a single line.
type Glyph struct {
	// GID is the glyph index in the font.
	GID GlyphID

	// Cluster is the index of the first rune this glyph was shaped from.
	// Multiple glyphs can belong to the same cluster (e.g., ligatures).
	Cluster int

	// X, Y are the pen position of the glyph relative to the line origin,
	// offsets included. Y grows upwards.
	X, Y float64

	// Advance is how much the pen moves after this glyph, kerning with
	// the next glyph included.
	Advance float64
}

// lineAdvance returns the pen position after the last glyph.
func lineAdvance(glyphs []Glyph) float64 {
	var x float64
	for _, g := range glyphs {
		x += g.Advance
	}
	return x
}
