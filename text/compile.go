package text

import (
	"context"
	"fmt"

	"github.com/gogpu/glyphpoly"
)

// CompileText compiles s set in f into shapes.
//
// The line origin is at (0, 0). Options.Eps is scaled by Options.Size, so
// the same options give the same visual quality at any size.
func CompileText(ctx context.Context, c *glyphpoly.Compiler, f Font, s string, opts Options) (*glyphpoly.Result, error) {
	o := opts.withDefaults()
	cmds, err := f.Path(s, o.Size, 0, 0)
	if err != nil {
		return nil, err
	}

	res, err := c.CompileResult(ctx, cmds, f.OutlinesFormat(), o.PPC, o.tolerance())
	if err != nil {
		return nil, fmt.Errorf("text: compile %q: %w", s, err)
	}
	glyphpoly.Logger().Debug("text: compiled",
		"runes", len([]rune(s)),
		"commands", len(cmds),
		"shapes", len(res.Shapes))
	return res, nil
}

// CompileGlyphs compiles every glyph of s on its own, in parallel on p.
// Results are in glyph order; glyphs without contours are skipped.
func CompileGlyphs(ctx context.Context, p *glyphpoly.Pool, f Font, s string, opts Options) ([]*glyphpoly.Result, error) {
	o := opts.withDefaults()
	paths, err := f.GlyphPaths(s, o.Size, 0, 0)
	if err != nil {
		return nil, err
	}

	jobs := make([]glyphpoly.Job, len(paths))
	for i, cmds := range paths {
		jobs[i] = glyphpoly.Job{
			Commands: cmds,
			Format:   f.OutlinesFormat(),
			PPC:      o.PPC,
			Eps:      o.tolerance(),
		}
	}
	return p.CompileAll(ctx, jobs)
}

// Merge concatenates the shapes of several results and sums their stats.
func Merge(results []*glyphpoly.Result) *glyphpoly.Result {
	out := &glyphpoly.Result{}
	for _, r := range results {
		if r == nil {
			continue
		}
		out.Shapes = append(out.Shapes, r.Shapes...)
		out.Stats.CappedSegments += r.Stats.CappedSegments
		out.Stats.MaxDeviation = max(out.Stats.MaxDeviation, r.Stats.MaxDeviation)
	}
	return out
}
