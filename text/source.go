package text

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/glyphpoly"
	"github.com/gogpu/glyphpoly/internal/cache"
)

// Font is the font collaborator of the compiler: it turns a string into
// path commands and reports the outline format those commands use.
type Font interface {
	// Path returns the outline of s set at size with the line origin at
	// (x, y). Y grows upwards.
	Path(s string, size, x, y float64) ([]glyphpoly.Command, error)

	// GlyphPaths is Path split per glyph. Glyphs without contours are omitted.
	GlyphPaths(s string, size, x, y float64) ([][]glyphpoly.Command, error)

	// OutlinesFormat reports whether outlines are quadratic or cubic.
	OutlinesFormat() glyphpoly.Format

	// UnitsPerEm returns the design units per em.
	UnitsPerEm() int

	// Ascender returns the ascender in font units (positive).
	Ascender() float64

	// Descender returns the descender in font units (negative).
	Descender() float64

	// AdvanceWidth returns the width of s set at size.
	AdvanceWidth(s string, size float64) float64
}

// FontSource represents a loaded font file.
//
// FontSource is safe for concurrent use.
// FontSource must not be copied after creation (enforced by copyCheck).
type FontSource struct {
	// addr is used for copy protection (Ebitengine pattern).
	// It must point to the FontSource itself.
	addr *FontSource

	mu     sync.RWMutex
	parsed ParsedFont
	format glyphpoly.Format
	name   string

	// outlines caches scaled outlines; they are immutable once built.
	outlines *cache.LRU[outlineKey, *GlyphOutline]

	config sourceConfig
}

type outlineKey struct {
	gid  GlyphID
	size float64
}

var _ Font = (*FontSource)(nil)

// NewFontSource creates a FontSource from font data (TTF or OTF).
// The data slice is not retained.
func NewFontSource(data []byte, opts ...SourceOption) (*FontSource, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	config := defaultSourceConfig()
	for _, opt := range opts {
		opt(&config)
	}

	parser, err := getParser(config.parserName)
	if err != nil {
		return nil, err
	}
	parsed, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}

	s := &FontSource{
		parsed:   parsed,
		format:   DetectFormat(data),
		outlines: cache.New[outlineKey, *GlyphOutline](config.outlineCache),
		config:   config,
	}
	s.addr = s
	s.name = parsed.Name()
	if s.name == "" {
		s.name = "Unknown Font"
	}
	return s, nil
}

// NewFontSourceFromFile loads a FontSource from a font file path.
func NewFontSourceFromFile(path string, opts ...SourceOption) (*FontSource, error) {
	// #nosec G304 -- Font file path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("text: failed to read font file: %w", err)
	}
	return NewFontSource(data, opts...)
}

// DetectFormat reports the outline format from the sfnt version tag.
// "OTTO" marks CFF outlines; every other tag is treated as TrueType.
// For a collection the first font decides.
func DetectFormat(data []byte) glyphpoly.Format {
	if len(data) < 4 {
		return glyphpoly.FormatTrueType
	}
	tag := data[:4]
	if bytes.Equal(tag, []byte("ttcf")) && len(data) >= 16 {
		off := binary.BigEndian.Uint32(data[12:16])
		if uint64(off)+4 <= uint64(len(data)) {
			tag = data[off : off+4]
		}
	}
	if bytes.Equal(tag, []byte("OTTO")) {
		return glyphpoly.FormatCFF
	}
	return glyphpoly.FormatTrueType
}

// Name returns the font name.
func (s *FontSource) Name() string {
	s.copyCheck()
	return s.name
}

// Parsed returns the parsed font for advanced operations.
func (s *FontSource) Parsed() ParsedFont {
	s.copyCheck()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parsed
}

// OutlinesFormat implements Font.
func (s *FontSource) OutlinesFormat() glyphpoly.Format {
	s.copyCheck()
	return s.format
}

// UnitsPerEm implements Font.
func (s *FontSource) UnitsPerEm() int {
	p, err := s.font()
	if err != nil {
		return 0
	}
	return p.UnitsPerEm()
}

// Ascender implements Font.
func (s *FontSource) Ascender() float64 {
	p, err := s.font()
	if err != nil {
		return 0
	}
	return p.Metrics().Ascender
}

// Descender implements Font.
func (s *FontSource) Descender() float64 {
	p, err := s.font()
	if err != nil {
		return 0
	}
	return p.Metrics().Descender
}

// AdvanceWidth implements Font.
func (s *FontSource) AdvanceWidth(str string, size float64) float64 {
	p, err := s.font()
	if err != nil {
		return 0
	}
	return lineAdvance(p.Shape(normalize(str), size))
}

// Path implements Font.
func (s *FontSource) Path(str string, size, x, y float64) ([]glyphpoly.Command, error) {
	var cmds []glyphpoly.Command
	err := s.eachGlyph(str, size, func(o *GlyphOutline, gx, gy float64) {
		cmds = o.AppendCommands(cmds, x+gx, y+gy)
	})
	return cmds, err
}

// GlyphPaths implements Font.
func (s *FontSource) GlyphPaths(str string, size, x, y float64) ([][]glyphpoly.Command, error) {
	var paths [][]glyphpoly.Command
	err := s.eachGlyph(str, size, func(o *GlyphOutline, gx, gy float64) {
		if !o.IsEmpty() {
			paths = append(paths, o.AppendCommands(nil, x+gx, y+gy))
		}
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (s *FontSource) eachGlyph(str string, size float64, fn func(o *GlyphOutline, x, y float64)) error {
	p, err := s.font()
	if err != nil {
		return err
	}
	for _, g := range p.Shape(normalize(str), size) {
		o, err := s.outlines.GetOrCreate(outlineKey{g.GID, size}, func() (*GlyphOutline, error) {
			return p.Outline(g.GID, size)
		})
		if err != nil {
			return err
		}
		fn(o, g.X, g.Y)
	}
	return nil
}

// Close releases the parsed font. Later calls fail with ErrClosed.
func (s *FontSource) Close() error {
	s.copyCheck()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parsed = nil
	s.outlines.Clear()
	return nil
}

func (s *FontSource) font() (ParsedFont, error) {
	s.copyCheck()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.parsed == nil {
		return nil, ErrClosed
	}
	return s.parsed, nil
}

// copyCheck panics if FontSource was copied by value.
// This is the Ebitengine pattern for preventing accidental copies.
func (s *FontSource) copyCheck() {
	if s == nil {
		panic("text: FontSource is nil, did you check the error from NewFontSource?")
	}
	if s.addr != s {
		panic("text: FontSource must not be copied by value")
	}
}

// normalize returns s in Unicode normalization form C, so that a base
// letter followed by a combining mark maps to the precomposed glyph.
func normalize(s string) []rune {
	return []rune(norm.NFC.String(s))
}
