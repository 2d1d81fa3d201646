package gen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/broady/elmgen/cmd/elmgen/internal/options"
	"github.com/broady/elmgen/elmgen"
	"github.com/broady/elmgen/internal/watch"
)

type Cmd struct {
	Watch    bool          `help:"Watch for changes and regenerate." short:"w"`
	Debounce time.Duration `help:"Delay before regenerating after a change." default:"200ms"`
}

func (c *Cmd) Run(ctx context.Context, g *options.Globals) error {
	cfg, err := g.Load()
	if err != nil {
		return err
	}
	logger := g.Logger(os.Stderr)
	out := g.Printer(os.Stdout)

	generate := func(ctx context.Context) error {
		res, err := elmgen.FromConfig(*cfg).WithLogger(logger).Generate(ctx)
		if err != nil {
			return err
		}
		out.OK("wrote %s (%d types)", filepath.Join(cfg.OutDir, res.Path), res.Types)
		for _, w := range res.Warnings {
			out.Note("%s: %s", w.Code, w.Message)
		}
		return nil
	}

	err = generate(ctx)
	if !c.Watch {
		return err
	}
	if err != nil {
		g.Printer(os.Stderr).Errors(err)
	}

	opts := []watch.Option{
		watch.WithDebounce(c.Debounce),
		watch.WithLogger(logger),
	}
	if cfg.OutDir != "" {
		opts = append(opts, watch.WithExclude(cfg.OutDir))
	}
	dirs := []string{"."}
	if cfg.Provider == elmgen.ProviderJSON {
		opts = append(opts, watch.WithExtensions(filepath.Ext(cfg.Input)))
		dirs = []string{filepath.Dir(cfg.Input)}
	} else if cfg.Provider == elmgen.ProviderSource {
		dirs = packageDirs(cfg.Packages)
	}

	w, err := watch.New(opts...)
	if err != nil {
		return err
	}
	defer w.Close()
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			return err
		}
	}
	logger.Info().Strs("dirs", dirs).Msg("watching for changes")

	err = w.Run(ctx, generate)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// packageDirs maps package patterns to the directories to watch. Import
// paths cannot be mapped without loading them, so they fall back to the
// current directory.
func packageDirs(patterns []string) []string {
	var dirs []string
	seen := make(map[string]bool)
	for _, p := range patterns {
		dir := "."
		if strings.HasPrefix(p, ".") || filepath.IsAbs(p) {
			dir = filepath.Clean(strings.TrimSuffix(p, "/..."))
		}
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	return dirs
}
