// Command glyphc compiles a string set in a font into polygons with holes.
//
// Usage:
//
//	glyphc -font Go-Regular.ttf -text "Hello" -size 100 -ppc 4 -eps 0.001 -o hello.json
//	glyphc -config glyphc.toml -format svg -o hello.svg
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pterm/pterm"

	"github.com/gogpu/glyphpoly"
	"github.com/gogpu/glyphpoly/text"
	"github.com/gogpu/glyphpoly/wasm"
)

func main() {
	initDisplay()
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " i ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := parseConfig(args)
	if err != nil {
		return err
	}

	level := slog.LevelError
	if cfg.Verbose {
		level = slog.LevelDebug
		pterm.EnableDebugMessages()
	}
	glyphpoly.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	src, err := text.NewFontSourceFromFile(cfg.Font, text.WithParser(cfg.Parser))
	if err != nil {
		return err
	}
	defer src.Close()
	pterm.Debug.Printf("loaded %s (%s outlines, %d units per em)\n",
		src.Name(), src.OutlinesFormat(), src.UnitsPerEm())

	newCompiler, cleanup, err := compilerFactory(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := compile(ctx, cfg, src, newCompiler)
	if err != nil {
		return err
	}
	if res.Stats.CappedSegments > 0 {
		pterm.Warning.Printf("%d curve segments hit the ppc limit (max deviation %g)\n",
			res.Stats.CappedSegments, res.Stats.MaxDeviation)
	}

	out := stdout
	if cfg.Output != "-" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	doc := newDocument(cfg, src.Name(), res)
	if err := writeDocument(out, cfg.Format, doc, res); err != nil {
		return fmt.Errorf("write %s: %w", cfg.Output, err)
	}

	if cfg.Output != "-" {
		printSummary(cfg, src, res)
		pterm.Success.Printf("wrote %d shapes to %s\n", len(res.Shapes), cfg.Output)
	}
	return nil
}

// compilerFactory returns a constructor for compilers configured by cfg,
// and a cleanup function releasing shared resources.
func compilerFactory(ctx context.Context, cfg config) (func() (*glyphpoly.Compiler, error), func(), error) {
	var opts []glyphpoly.Option
	if cfg.Strict {
		opts = append(opts, glyphpoly.WithStrictTolerance())
	}
	if cfg.Wasm == "" {
		return func() (*glyphpoly.Compiler, error) {
			return glyphpoly.NewCompiler(opts...), nil
		}, func() {}, nil
	}

	// #nosec G304 -- module path is provided by the user
	binary, err := os.ReadFile(cfg.Wasm)
	if err != nil {
		return nil, nil, err
	}
	mod, err := wasm.Compile(ctx, binary, wasm.WithLogger(glyphpoly.Logger()))
	if err != nil {
		return nil, nil, err
	}
	factory := func() (*glyphpoly.Compiler, error) {
		u, err := mod.NewUnit(ctx)
		if err != nil {
			return nil, err
		}
		return glyphpoly.NewCompiler(append(opts[:len(opts):len(opts)], glyphpoly.WithUnit(u))...), nil
	}
	return factory, func() { _ = mod.Close(ctx) }, nil
}

func compile(ctx context.Context, cfg config, f text.Font, newCompiler func() (*glyphpoly.Compiler, error)) (*glyphpoly.Result, error) {
	opts := text.Options{Size: cfg.Size, PPC: cfg.PPC, Eps: cfg.Eps}

	if cfg.Workers > 0 {
		p, err := glyphpoly.NewPool(cfg.Workers, newCompiler)
		if err != nil {
			return nil, err
		}
		defer p.Close(ctx)
		results, err := text.CompileGlyphs(ctx, p, f, cfg.Text, opts)
		if err != nil {
			return nil, err
		}
		return text.Merge(results), nil
	}

	c, err := newCompiler()
	if err != nil {
		return nil, err
	}
	defer c.Close(ctx)
	return text.CompileText(ctx, c, f, cfg.Text, opts)
}

func printSummary(cfg config, f text.Font, res *glyphpoly.Result) {
	var holes, vertices int
	for _, s := range res.Shapes {
		holes += len(s.Holes)
		vertices += s.VertexCount()
	}
	m := text.Measure(f, cfg.Text, cfg.Size)
	_ = pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Shapes", "Holes", "Vertices", "Advance", "Ascender", "Descender", "Capped"},
		{
			fmt.Sprint(len(res.Shapes)),
			fmt.Sprint(holes),
			fmt.Sprint(vertices),
			fmt.Sprintf("%.2f", m.AdvanceWidth),
			fmt.Sprintf("%.2f", m.Ascender),
			fmt.Sprintf("%.2f", m.Descender),
			fmt.Sprint(res.Stats.CappedSegments),
		},
	}).Render()
}
