package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/broady/elmgen/cmd/elmgen/internal/check"
	"github.com/broady/elmgen/cmd/elmgen/internal/dump"
	"github.com/broady/elmgen/cmd/elmgen/internal/gen"
	"github.com/broady/elmgen/cmd/elmgen/internal/options"
	"github.com/broady/elmgen/cmd/elmgen/internal/run"
)

type CLI struct {
	options.Globals

	Version VersionCmd `cmd:"" help:"Print version information."`
	Gen     gen.Cmd    `cmd:"" help:"Generate the Elm module."`
	Check   check.Cmd  `cmd:"" help:"Fail if the Elm module on disk is out of date."`
	Dump    dump.Cmd   `cmd:"" help:"Print the extracted schema as JSON."`
	Run     run.Cmd    `cmd:"" help:"Build and run a func() *elmgen.Generator from a main package."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	sigctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("elmgen"),
		kong.Description("Generate Elm types, JSON decoders and encoders from Go types."),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals),
		kong.BindTo(sigctx, (*context.Context)(nil)),
	)
	if err := ctx.Run(); err != nil {
		cli.Printer(os.Stderr).Errors(err)
		stop()
		os.Exit(1)
	}
}
