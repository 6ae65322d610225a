package text

// SourceOption configures FontSource creation.
type SourceOption func(*sourceConfig)

// sourceConfig holds configuration for FontSource.
type sourceConfig struct {
	parserName   string
	outlineCache int
}

// DefaultOutlineCache is the number of scaled glyph outlines a FontSource
// keeps by default.
const DefaultOutlineCache = 512

// defaultSourceConfig returns the default source configuration.
func defaultSourceConfig() sourceConfig {
	return sourceConfig{
		parserName:   defaultParserName,
		outlineCache: DefaultOutlineCache,
	}
}

// WithParser specifies the font parser backend.
// The default is "ximage" which uses golang.org/x/image/font/sfnt;
// "gotext" shapes with go-text/typesetting.
//
// Custom parsers can be registered with RegisterParser.
func WithParser(name string) SourceOption {
	return func(c *sourceConfig) {
		c.parserName = name
	}
}

// WithOutlineCache sets how many scaled glyph outlines the FontSource
// keeps between calls. Zero disables the cache.
func WithOutlineCache(n int) SourceOption {
	return func(c *sourceConfig) {
		if n >= 0 {
			c.outlineCache = n
		}
	}
}

// Default compile options for text.
const (
	DefaultSize = 100
	DefaultPPC  = 2
	DefaultEps  = 0.001
)

// Options control how text is compiled.
// Zero fields take the defaults above.
type Options struct {
	// Size is the font size in output units per em.
	Size float64

	// PPC is the maximum number of vertices per curve segment.
	PPC int

	// Eps is the flattening tolerance relative to Size; the absolute
	// tolerance passed to the compiler is Eps·Size.
	Eps float64
}

func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	if o.PPC <= 0 {
		o.PPC = DefaultPPC
	}
	if o.Eps <= 0 {
		o.Eps = DefaultEps
	}
	return o
}

// tolerance returns the absolute flattening tolerance.
func (o Options) tolerance() float32 {
	return float32(o.Eps * o.Size)
}
