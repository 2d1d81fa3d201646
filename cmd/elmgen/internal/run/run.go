package run

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/broady/elmgen/cmd/elmgen/internal/options"
	"github.com/broady/elmgen/internal/discover"
	"github.com/broady/elmgen/internal/runner"
)

type Cmd struct {
	Package string `arg:"" optional:"" default:"." help:"Main package containing the export function."`
	Export  string `help:"Name of the func() *elmgen.Generator to run." short:"e"`
	OutDir  string `help:"Override the generator's output directory." name:"out-dir" short:"o" type:"path"`
	Check   bool   `help:"Fail if the generated module on disk is out of date instead of writing it."`
}

func (c *Cmd) Run(ctx context.Context, g *options.Globals) error {
	logger := g.Logger(os.Stderr)

	res, err := discover.Find(c.Package, "")
	if err != nil {
		return err
	}
	if res.PackageName != "main" {
		return fmt.Errorf("%s is package %s; elmgen run needs a main package", res.PackagePath, res.PackageName)
	}
	export, err := discover.Select(res.Exports, c.Export)
	if err != nil {
		return err
	}
	logger.Debug().Str("export", export.Name).Str("dir", res.Dir).Msg("running generator")

	out, err := runner.Exec(ctx, runner.Options{
		Export: export.Name,
		PkgDir: res.Dir,
		OutDir: c.OutDir,
		Check:  c.Check,
	})
	if err != nil {
		return err
	}
	p := g.Printer(os.Stdout)
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if rest, ok := strings.CutPrefix(line, "warning: "); ok {
			p.Note("%s", rest)
		} else if line != "" {
			p.OK("%s", line)
		}
	}
	return nil
}
