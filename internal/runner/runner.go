// Package runner builds and runs a user's generator export.
//
// The user's package is compiled with a -overlay that drops its main() and
// adds one calling the export, so unexported functions and package main
// both work.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
)

const runnerFile = "elmgen_runner_main_.go"

// Options configures the runner.
type Options struct {
	// Export is the func() *elmgen.Generator to call.
	Export string

	// PkgDir is the directory containing the package.
	PkgDir string

	// OutDir overrides the generator's output directory when set.
	OutDir string

	// Check renders without writing and fails if the file on disk differs.
	Check bool
}

// Exec builds and runs the generator, returning its combined output.
func Exec(ctx context.Context, opts Options) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "elmgen-run-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	overlay, err := Overlay(opts, tmpDir)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(struct {
		Replace map[string]string `json:"Replace"`
	}{overlay})
	if err != nil {
		return nil, fmt.Errorf("marshal overlay: %w", err)
	}
	overlayFile := filepath.Join(tmpDir, "overlay.json")
	if err := os.WriteFile(overlayFile, data, 0o644); err != nil {
		return nil, fmt.Errorf("write overlay: %w", err)
	}

	bin := filepath.Join(tmpDir, "runner")
	build := exec.CommandContext(ctx, "go", "build", "-mod=mod", "-overlay", overlayFile, "-o", bin, ".")
	build.Dir = opts.PkgDir
	build.Env = append(os.Environ(), "GOWORK=off")
	if out, err := build.CombinedOutput(); err != nil {
		return out, fmt.Errorf("build: %w\n%s", err, out)
	}

	run := exec.CommandContext(ctx, bin)
	run.Dir = opts.PkgDir
	out, err := run.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("run: %w\n%s", err, out)
	}
	return out, nil
}

// Overlay writes the replacement files into tmpDir and returns the
// -overlay Replace map.
func Overlay(opts Options, tmpDir string) (map[string]string, error) {
	overlay := make(map[string]string)
	files, err := filepath.Glob(filepath.Join(opts.PkgDir, "*.go"))
	if err != nil {
		return nil, fmt.Errorf("glob: %w", err)
	}
	for _, file := range files {
		if strings.HasSuffix(file, "_test.go") {
			continue
		}
		modified, err := RemoveMain(file)
		if err != nil {
			return nil, fmt.Errorf("process %s: %w", file, err)
		}
		if modified == nil {
			continue
		}
		tmp := filepath.Join(tmpDir, filepath.Base(file))
		if err := os.WriteFile(tmp, modified, 0o644); err != nil {
			return nil, fmt.Errorf("write modified %s: %w", file, err)
		}
		overlay[file] = tmp
	}

	src, err := Source(opts)
	if err != nil {
		return nil, fmt.Errorf("generate runner: %w", err)
	}
	tmp := filepath.Join(tmpDir, runnerFile)
	if err := os.WriteFile(tmp, src, 0o644); err != nil {
		return nil, fmt.Errorf("write runner: %w", err)
	}
	overlay[filepath.Join(opts.PkgDir, runnerFile)] = tmp
	return overlay, nil
}

// RemoveMain returns the file's source with func main() removed, or nil if
// the file has no main.
func RemoveMain(filename string) ([]byte, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	found := false
	decls := f.Decls[:0]
	for _, decl := range f.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && fn.Name.Name == "main" && fn.Recv == nil {
			found = true
			continue
		}
		decls = append(decls, decl)
	}
	if !found {
		return nil, nil
	}
	f.Decls = decls

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var runnerTemplate = template.Must(template.New("runner").Parse(`package main

import (
	"context"
	"fmt"
	"os"
{{- if .Check}}
	"path/filepath"
{{- end}}
)

func main() {
	g := {{.Export}}()
{{- if .OutDir}}
	g = g.ToDir({{printf "%q" .OutDir}})
{{- end}}
{{- if .Check}}
	res, err := g.Render(context.Background())
	if err != nil {
		elmgenRunnerFail(err)
	}
	current, err := os.ReadFile(filepath.Join(g.Config().OutDir, res.Path))
	if err != nil || string(current) != string(res.Content) {
		fmt.Fprintf(os.Stderr, "%s is out of date\n", res.Path)
		os.Exit(1)
	}
	fmt.Printf("%s is up to date (%d types)\n", res.Path, res.Types)
{{- else}}
	res, err := g.Generate(context.Background())
	if err != nil {
		elmgenRunnerFail(err)
	}
	fmt.Printf("wrote %s (%d types)\n", res.Path, res.Types)
{{- end}}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.Code, w.Message)
	}
}

func elmgenRunnerFail(err error) {
	fmt.Fprintf(os.Stderr, "elmgen run: %v\n", err)
	os.Exit(1)
}
`))

// Source returns the runner's main file.
func Source(opts Options) ([]byte, error) {
	if !token.IsIdentifier(opts.Export) {
		return nil, fmt.Errorf("invalid export name %q", opts.Export)
	}
	var buf bytes.Buffer
	if err := runnerTemplate.Execute(&buf, opts); err != nil {
		return nil, err
	}
	return format.Source(buf.Bytes())
}
