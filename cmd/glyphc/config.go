package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/glyphpoly/text"
)

// config is the complete set of settings for one run.
// It is read from a TOML file and overridden by command line flags.
type config struct {
	Font    string  `toml:"font"`
	Parser  string  `toml:"parser"`
	Text    string  `toml:"text"`
	Size    float64 `toml:"size"`
	PPC     int     `toml:"ppc"`
	Eps     float64 `toml:"eps"`
	Format  string  `toml:"format"`
	Output  string  `toml:"output"`
	Strict  bool    `toml:"strict"`
	Workers int     `toml:"workers"`
	Wasm    string  `toml:"wasm"`
	Verbose bool    `toml:"verbose"`
}

func defaultConfig() config {
	return config{
		Parser: text.ParserXImage,
		Size:   text.DefaultSize,
		PPC:    text.DefaultPPC,
		Eps:    text.DefaultEps,
		Format: "json",
		Output: "shapes.json",
	}
}

// Output formats.
var formats = []string{"json", "yaml", "svg"}

func (c config) validate() error {
	var errs []error
	if c.Font == "" {
		errs = append(errs, errors.New("no font given"))
	}
	if c.Text == "" {
		errs = append(errs, errors.New("no text given"))
	}
	if c.Size <= 0 {
		errs = append(errs, fmt.Errorf("size must be positive, got %g", c.Size))
	}
	if c.PPC <= 0 {
		errs = append(errs, fmt.Errorf("ppc must be positive, got %d", c.PPC))
	}
	if c.Eps <= 0 {
		errs = append(errs, fmt.Errorf("eps must be positive, got %g", c.Eps))
	}
	known := false
	for _, f := range formats {
		known = known || f == c.Format
	}
	if !known {
		errs = append(errs, fmt.Errorf("unknown output format %q (want one of %v)", c.Format, formats))
	}
	return errors.Join(errs...)
}

// loadConfigFile merges the TOML file at path into c. Keys absent from the
// file keep their current values; unknown keys are an error.
func loadConfigFile(c *config, path string) error {
	// #nosec G304 -- config path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

// parseConfig builds the run configuration from args: defaults, then the
// -config file if any, then every flag set explicitly.
func parseConfig(args []string) (config, error) {
	fs := flag.NewFlagSet("glyphc", flag.ContinueOnError)
	var (
		cfgPath = fs.String("config", "", "TOML config file")
		flags   = defaultConfig()
	)
	fs.StringVar(&flags.Font, "font", flags.Font, "font file (TTF or OTF)")
	fs.StringVar(&flags.Parser, "parser", flags.Parser, fmt.Sprintf("font parser %v", text.Parsers()))
	fs.StringVar(&flags.Text, "text", flags.Text, "text to compile")
	fs.Float64Var(&flags.Size, "size", flags.Size, "font size in output units per em")
	fs.IntVar(&flags.PPC, "ppc", flags.PPC, "maximum vertices per curve segment")
	fs.Float64Var(&flags.Eps, "eps", flags.Eps, "flattening tolerance relative to size")
	fs.StringVar(&flags.Format, "format", flags.Format, fmt.Sprintf("output format %v", formats))
	fs.StringVar(&flags.Output, "o", flags.Output, "output file, - for stdout")
	fs.BoolVar(&flags.Strict, "strict", flags.Strict, "fail when a curve cannot meet eps within ppc")
	fs.IntVar(&flags.Workers, "workers", flags.Workers, "compile glyphs in parallel on this many workers (0 compiles the whole string at once)")
	fs.StringVar(&flags.Wasm, "wasm", flags.Wasm, "externally built WebAssembly compiler module to use instead of the built-in one")
	fs.BoolVar(&flags.Verbose, "v", flags.Verbose, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	cfg := defaultConfig()
	if *cfgPath != "" {
		if err := loadConfigFile(&cfg, *cfgPath); err != nil {
			return config{}, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "font":
			cfg.Font = flags.Font
		case "parser":
			cfg.Parser = flags.Parser
		case "text":
			cfg.Text = flags.Text
		case "size":
			cfg.Size = flags.Size
		case "ppc":
			cfg.PPC = flags.PPC
		case "eps":
			cfg.Eps = flags.Eps
		case "format":
			cfg.Format = flags.Format
		case "o":
			cfg.Output = flags.Output
		case "strict":
			cfg.Strict = flags.Strict
		case "workers":
			cfg.Workers = flags.Workers
		case "wasm":
			cfg.Wasm = flags.Wasm
		case "v":
			cfg.Verbose = flags.Verbose
		}
	})
	return cfg, cfg.validate()
}
