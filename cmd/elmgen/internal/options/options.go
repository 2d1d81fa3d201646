// Package options holds the flags shared by every elmgen command.
package options

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/broady/elmgen/elmgen"
)

// Globals are the flags accepted before or after any command.
type Globals struct {
	Config  string   `help:"Config file." short:"c" default:"elmgen.yaml" type:"path"`
	Set     []string `help:"Override a config key, e.g. --set module=Api.Types." short:"s" placeholder:"KEY=VALUE"`
	Verbose bool     `help:"Log debug output." short:"v"`
	NoColor bool     `help:"Disable colored output." name:"no-color" env:"NO_COLOR"`
}

// Load reads the config file, applies --set overrides and validates the
// result, with defaults filled in. A missing file is only an error when no
// overrides are given.
func (g *Globals) Load() (*elmgen.Config, error) {
	cfg, err := elmgen.LoadConfig(g.Config)
	switch {
	case errors.Is(err, os.ErrNotExist) && len(g.Set) > 0:
		cfg = &elmgen.Config{}
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("config file %s not found (create it or pass --set module=... --set packages=...)", g.Config)
	case err != nil:
		return nil, err
	}
	if err := cfg.ApplyOverrides(g.Set); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Provider == elmgen.ProviderReflection {
		return nil, errors.New("the reflection provider needs Go values; export a func() *elmgen.Generator and use elmgen run")
	}
	eff := elmgen.FromConfig(*cfg).Config()
	return &eff, nil
}

// Color reports whether output to w should be colored.
func (g *Globals) Color(w io.Writer) bool {
	if g.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Logger returns a console logger writing to w.
func (g *Globals) Logger(w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if g.Verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: !g.Color(w), TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Printer writes colored status lines.
type Printer struct {
	w    io.Writer
	ok   *color.Color
	bad  *color.Color
	note *color.Color
}

// Printer returns a Printer for w, colored when w is a terminal.
func (g *Globals) Printer(w io.Writer) *Printer {
	p := &Printer{
		w:    w,
		ok:   color.New(color.FgGreen),
		bad:  color.New(color.FgRed, color.Bold),
		note: color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.ok, p.bad, p.note} {
		if g.Color(w) {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// OK prints a success line.
func (p *Printer) OK(format string, args ...any) {
	p.ok.Fprint(p.w, "✓ ")
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Note prints a warning line.
func (p *Printer) Note(format string, args ...any) {
	p.note.Fprint(p.w, "! ")
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Errors prints every error joined into err, one per line.
func (p *Printer) Errors(err error) {
	for _, e := range Flatten(err) {
		p.bad.Fprint(p.w, "✗ ")
		fmt.Fprintln(p.w, e)
	}
}

// Added and Removed print diff lines.
func (p *Printer) Added(line string)   { p.ok.Fprintln(p.w, "+"+line) }
func (p *Printer) Removed(line string) { p.bad.Fprintln(p.w, "-"+line) }

// Context prints an unchanged diff line.
func (p *Printer) Context(line string) { fmt.Fprintln(p.w, " "+line) }

// Flatten expands errors built with errors.Join.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}
	var out []error
	for _, e := range joined.Unwrap() {
		out = append(out, Flatten(e)...)
	}
	return out
}
