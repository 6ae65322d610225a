package text

// Metrics holds the measurements of a string at a specific size.
type Metrics struct {
	// Ascender is the font ascender scaled to size (positive).
	Ascender float64

	// Descender is the font descender scaled to size (negative).
	Descender float64

	// AdvanceWidth is the width of the string.
	AdvanceWidth float64
}

// Height returns the distance between ascender and descender.
func (m Metrics) Height() float64 {
	return m.Ascender - m.Descender
}

// Measure measures s set in f at size.
func Measure(f Font, s string, size float64) Metrics {
	upem := float64(f.UnitsPerEm())
	if upem == 0 {
		return Metrics{}
	}
	return Metrics{
		Ascender:     f.Ascender() / upem * size,
		Descender:    f.Descender() / upem * size,
		AdvanceWidth: f.AdvanceWidth(s, size),
	}
}
