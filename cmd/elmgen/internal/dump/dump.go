package dump

import (
	"context"
	"io"
	"os"

	"github.com/broady/elmgen/cmd/elmgen/internal/options"
	"github.com/broady/elmgen/elmgen"
	"github.com/broady/elmgen/elmgen/ir"
)

type Cmd struct {
	Out string `help:"Write the schema to a file instead of stdout." short:"o" type:"path"`
}

func (c *Cmd) Run(ctx context.Context, g *options.Globals) error {
	cfg, err := g.Load()
	if err != nil {
		return err
	}
	schema, err := elmgen.FromConfig(*cfg).WithLogger(g.Logger(os.Stderr)).Schema(ctx)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if c.Out != "" {
		f, err := os.Create(c.Out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return ir.EncodeSchema(w, schema)
}
