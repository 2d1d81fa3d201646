package check

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/broady/elmgen/cmd/elmgen/internal/options"
	"github.com/broady/elmgen/elmgen"
	"github.com/broady/elmgen/elmgen/sink"
)

// ErrStale is returned when the module on disk differs from the generated one.
var ErrStale = errors.New("generated module is out of date; run elmgen gen")

type Cmd struct {
	Quiet bool `help:"Do not print the diff." short:"q"`
}

func (c *Cmd) Run(ctx context.Context, g *options.Globals) error {
	cfg, err := g.Load()
	if err != nil {
		return err
	}
	res, err := elmgen.FromConfig(*cfg).WithLogger(g.Logger(os.Stderr)).Render(ctx)
	if err != nil {
		return err
	}

	out := g.Printer(os.Stdout)
	current, err := sink.NewFilesystemSink(cfg.OutDir).ReadFile(res.Path)
	if errors.Is(err, fs.ErrNotExist) {
		out.Note("%s does not exist", res.Path)
		return ErrStale
	}
	if err != nil {
		return err
	}

	if string(current) == string(res.Content) {
		out.OK("%s is up to date (%d types)", res.Path, res.Types)
		return nil
	}
	if !c.Quiet {
		fmt.Fprintf(os.Stdout, "--- %s (on disk)\n+++ %s (generated)\n", res.Path, res.Path)
		PrintDiff(out, string(current), string(res.Content))
	}
	return ErrStale
}

// PrintDiff prints a line diff of two texts.
func PrintDiff(p *options.Printer, from, to string) {
	for _, d := range LineDiff(from, to) {
		lines := strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n")
		for _, line := range lines {
			switch d.Type {
			case diffpatch.DiffInsert:
				p.Added(line)
			case diffpatch.DiffDelete:
				p.Removed(line)
			}
		}
	}
}

// LineDiff diffs two texts line by line. Equal runs are dropped.
func LineDiff(from, to string) []diffpatch.Diff {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
	out := diffs[:0]
	for _, d := range diffs {
		if d.Type != diffpatch.DiffEqual {
			out = append(out, d)
		}
	}
	return out
}
