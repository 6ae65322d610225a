package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/chewxy/math32"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/glyphpoly"
)

// document is the serialized form of a compile run.
type document struct {
	Text   string      `json:"text" yaml:"text"`
	Font   string      `json:"font" yaml:"font"`
	Size   float64     `json:"size" yaml:"size"`
	PPC    int         `json:"ppc" yaml:"ppc"`
	Eps    float64     `json:"eps" yaml:"eps"`
	Stats  stats       `json:"stats" yaml:"stats"`
	Shapes []shapeJSON `json:"shapes" yaml:"shapes"`
}

type stats struct {
	CappedSegments uint32  `json:"cappedSegments" yaml:"cappedSegments"`
	MaxDeviation   float32 `json:"maxDeviation" yaml:"maxDeviation"`
}

// shapeJSON stores polygons as lists of [x, y] pairs.
type shapeJSON struct {
	Fill  [][2]float32   `json:"fill" yaml:"fill,flow"`
	Holes [][][2]float32 `json:"holes" yaml:"holes,flow"`
}

func pairs(p glyphpoly.Polygon) [][2]float32 {
	out := make([][2]float32, len(p))
	for i, v := range p {
		out[i] = [2]float32{v.X, v.Y}
	}
	return out
}

func newDocument(cfg config, fontName string, res *glyphpoly.Result) document {
	doc := document{
		Text: cfg.Text,
		Font: fontName,
		Size: cfg.Size,
		PPC:  cfg.PPC,
		Eps:  cfg.Eps,
		Stats: stats{
			CappedSegments: res.Stats.CappedSegments,
			MaxDeviation:   res.Stats.MaxDeviation,
		},
		Shapes: make([]shapeJSON, len(res.Shapes)),
	}
	for i, s := range res.Shapes {
		holes := make([][][2]float32, len(s.Holes))
		for j, h := range s.Holes {
			holes[j] = pairs(h)
		}
		doc.Shapes[i] = shapeJSON{Fill: pairs(s.Fill), Holes: holes}
	}
	return doc
}

func writeDocument(w io.Writer, format string, doc document, res *glyphpoly.Result) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case "svg":
		return writeSVG(w, res.Shapes)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// writeSVG renders every shape as one even-odd path. The y axis is flipped
// so that the y-up outlines display upright.
func writeSVG(w io.Writer, shapes []glyphpoly.Shape) error {
	lo := glyphpoly.Vertex{X: math32.Inf(1), Y: math32.Inf(1)}
	hi := glyphpoly.Vertex{X: math32.Inf(-1), Y: math32.Inf(-1)}
	for _, s := range shapes {
		l, h := s.Fill.Bounds()
		lo.X, lo.Y = math32.Min(lo.X, l.X), math32.Min(lo.Y, l.Y)
		hi.X, hi.Y = math32.Max(hi.X, h.X), math32.Max(hi.Y, h.Y)
	}
	if len(shapes) == 0 {
		lo, hi = glyphpoly.Vertex{}, glyphpoly.Vertex{X: 1, Y: 1}
	}
	const margin = 2

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%g %g %g %g">`+"\n",
		lo.X-margin, -hi.Y-margin, hi.X-lo.X+2*margin, hi.Y-lo.Y+2*margin)
	for _, s := range shapes {
		b.WriteString(`  <path fill-rule="evenodd" d="`)
		writeSVGPolygon(&b, s.Fill)
		for _, h := range s.Holes {
			writeSVGPolygon(&b, h)
		}
		b.WriteString("\"/>\n")
	}
	b.WriteString("</svg>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeSVGPolygon(b *strings.Builder, p glyphpoly.Polygon) {
	for i, v := range p {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(b, "%s%g %g ", cmd, v.X, -v.Y)
	}
	b.WriteString("Z ")
}
