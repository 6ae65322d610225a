package glyphpoly

import (
	"github.com/gogpu/glyphpoly/abi"
	"github.com/gogpu/glyphpoly/internal/native"
)

// Default encode buffer sizes. The initial size fits a typical glyph; the
// maximum bounds growth for pathological input.
const (
	DefaultBufferSize    = 4 * 1024
	DefaultMaxBufferSize = 16 * 1024 * 1024
)

// Option configures a Compiler during creation.
//
// Example:
//
//	// Default in-process unit
//	c := glyphpoly.NewCompiler()
//
//	// Sandboxed unit
//	u, _ := wasm.New(ctx, moduleBytes)
//	c := glyphpoly.NewCompiler(glyphpoly.WithUnit(u))
type Option func(*options)

type options struct {
	unit          abi.Unit
	bufferSize    int
	maxBufferSize int
	strict        bool
}

func defaultOptions() options {
	return options{
		unit:          nil, // Will be set to a native unit if nil
		bufferSize:    DefaultBufferSize,
		maxBufferSize: DefaultMaxBufferSize,
	}
}

// WithUnit sets the compiler unit. The Compiler takes ownership and closes
// it on Close. A unit must not be shared between compilers.
func WithUnit(u abi.Unit) Option {
	return func(o *options) {
		o.unit = u
	}
}

// WithBufferSize sets the initial encode buffer size in bytes.
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithMaxBufferSize bounds encode buffer growth.
func WithMaxBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBufferSize = n
		}
	}
}

// WithStrictTolerance makes a curve that cannot meet eps within ppc
// vertices a compile failure instead of a logged warning.
func WithStrictTolerance() Option {
	return func(o *options) {
		o.strict = true
	}
}

func (o *options) newUnit() abi.Unit {
	if o.unit != nil {
		return o.unit
	}
	return native.New(native.DefaultPages, native.DefaultMaxPages)
}
