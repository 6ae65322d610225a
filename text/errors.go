package text

import (
	"errors"
	"fmt"
)

// Sentinel errors for text package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrUnknownParser is returned by WithParser for an unregistered name.
	ErrUnknownParser = errors.New("text: unknown font parser")

	// ErrClosed is returned by a FontSource after Close.
	ErrClosed = errors.New("text: font source closed")
)

// GlyphError is returned when the outline of a glyph cannot be loaded.
type GlyphError struct {
	GID GlyphID
	Err error
}

func (e *GlyphError) Error() string {
	return fmt.Sprintf("text: glyph %d: %v", e.GID, e.Err)
}

func (e *GlyphError) Unwrap() error {
	return e.Err
}
