// Package glyphpoly compiles font glyph outlines into filled polygons with holes.
//
// # Overview
//
// A glyph outline is a sequence of path commands (move, line, quadratic and
// cubic curve, close). glyphpoly flattens the curves into straight edges,
// groups the resulting closed contours into shapes, and returns each shape as
// one fill polygon plus zero or more hole polygons, ready for triangulation
// or extrusion.
//
// # Quick Start
//
//	import "github.com/gogpu/glyphpoly"
//
//	c := glyphpoly.NewCompiler()
//	defer c.Close(ctx)
//
//	shapes, err := c.Compile(ctx, []glyphpoly.Command{
//	    glyphpoly.MoveTo(0, 0),
//	    glyphpoly.LineTo(10, 0),
//	    glyphpoly.QuadTo(10, 10, 0, 10),
//	    glyphpoly.Close(),
//	}, glyphpoly.FormatTrueType, 2, 0.1)
//
// For text, the text sub-package loads fonts and turns strings into the
// command sequences above.
//
// # Compiler boundary
//
// The geometry work runs inside a compiler unit that shares nothing with the
// caller except a linear memory. The Compiler encodes commands into a byte
// buffer, copies it into that memory, invokes the unit with the buffer
// length and the scalar parameters, and decodes the result the unit wrote
// back. The wire layout is defined by package abi.
//
// Two units are provided:
//   - the default in-process unit (no options needed)
//   - package wasm, which runs a compiled WebAssembly module under wazero;
//     the module itself is supplied by the caller and is not part of this
//     repository
//
// # Tolerance
//
// ppc bounds the number of vertices emitted per curve segment and eps
// bounds the distance from any emitted edge to the true curve. When a
// curve cannot reach eps within ppc vertices, ppc wins: the shortfall is
// reported in Result.Stats and logged at warn level, or turned into a
// *CompileError with WithStrictTolerance.
//
// # Shapes
//
// Contour roles come from containment, not winding direction alone: an
// outermost contour is a fill, a contour directly inside a fill with the
// opposite winding is one of its holes, and a contour inside a hole starts
// a new shape. Counters of letters such as "O", "A" and "B" become holes;
// islands inside counters become separate shapes.
//
// # Concurrency
//
// A Compiler serializes its calls. Pool runs independent jobs on several
// compilers, each with its own unit and memory.
package glyphpoly
