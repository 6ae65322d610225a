package text

import (
	"fmt"
	"slices"
	"sync"
)

// FontParser is an interface for font parsing backends.
// This abstraction allows swapping the font parsing library
// (golang.org/x/image/font/sfnt or go-text/typesetting).
//
// The default implementation uses golang.org/x/image.
type FontParser interface {
	// Parse parses font data (TTF or OTF) and returns a ParsedFont.
	Parse(data []byte) (ParsedFont, error)
}

// ParsedFont represents a parsed font file.
//
// Implementations must be safe for concurrent use.
type ParsedFont interface {
	// Name returns the font family name, or "" if not available.
	Name() string

	// UnitsPerEm returns the units per em for the font.
	UnitsPerEm() int

	// Metrics returns the vertical font metrics in font units.
	Metrics() FontMetrics

	// Shape maps runes to glyphs and places them on one line at size
	// (units per em of the output). Runes without a glyph map to glyph 0.
	Shape(runes []rune, size float64) []Glyph

	// Outline returns the outline of gid scaled to size, with the pen
	// position at the origin and y growing upwards.
	Outline(gid GlyphID, size float64) (*GlyphOutline, error)
}

// FontMetrics holds font-level metrics in font units.
type FontMetrics struct {
	// Ascender is the distance from the baseline to the top of the font (positive).
	Ascender float64

	// Descender is the distance from the baseline to the bottom of the font (negative).
	Descender float64

	// LineGap is the recommended line gap between lines.
	LineGap float64
}

// Height returns the total line height (ascender - descender + line gap).
func (m FontMetrics) Height() float64 {
	return m.Ascender - m.Descender + m.LineGap
}

// Parser names accepted by WithParser.
const (
	ParserXImage = "ximage"
	ParserGoText = "gotext"
)

// defaultParserName is the name of the default parser.
const defaultParserName = ParserXImage

var (
	parserMu       sync.RWMutex
	parserRegistry = map[string]FontParser{
		ParserXImage: ximageParser{},
		ParserGoText: gotextParser{},
	}
)

// RegisterParser registers a custom font parser.
// Registering under an existing name replaces that parser.
func RegisterParser(name string, parser FontParser) {
	parserMu.Lock()
	defer parserMu.Unlock()
	parserRegistry[name] = parser
}

// Parsers returns the registered parser names in sorted order.
func Parsers() []string {
	parserMu.RLock()
	defer parserMu.RUnlock()
	names := make([]string, 0, len(parserRegistry))
	for name := range parserRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func getParser(name string) (FontParser, error) {
	if name == "" {
		name = defaultParserName
	}
	parserMu.RLock()
	defer parserMu.RUnlock()
	p, ok := parserRegistry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParser, name)
	}
	return p, nil
}
