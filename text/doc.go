// Package text turns strings into glyph outlines for the glyphpoly compiler.
//
// The pipeline follows a separation of concerns:
//
//   - FontSource: a parsed font file, shared across the application
//   - FontParser: pluggable parsing and shaping backend
//   - CompileText / CompileGlyphs: outline a string and compile it
//
// # Example usage
//
//	source, err := text.NewFontSourceFromFile("Roboto-Regular.ttf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer source.Close()
//
//	c := glyphpoly.NewCompiler()
//	defer c.Close(ctx)
//
//	res, err := text.CompileText(ctx, c, source, "Hello", text.Options{Size: 72})
//
// Outlines use a y-up coordinate system with the baseline at y = 0.
//
// # Pluggable Parser Backend
//
// Two parsers are registered:
//   - "ximage" (default): golang.org/x/image/font/sfnt, nominal glyph
//     mapping with kern table pair kerning
//   - "gotext": go-text/typesetting with HarfBuzz shaping
//
// Custom parsers can be registered for alternative implementations:
//
//	text.RegisterParser("myparser", myCustomParser)
//	source, err := text.NewFontSource(data, text.WithParser("myparser"))
//
// Input strings are normalized to NFC before shaping.
package text
