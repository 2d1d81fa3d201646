package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		contains []string
		excludes []string
	}{
		{
			name:     "generate",
			opts:     Options{Export: "Types"},
			contains: []string{"g := Types()", "g.Generate(context.Background())", "wrote %s"},
			excludes: []string{"ToDir", "g.Render", `"path/filepath"`},
		},
		{
			name:     "out dir",
			opts:     Options{Export: "types", OutDir: "frontend/src"},
			contains: []string{"g := types()", `g = g.ToDir("frontend/src")`},
		},
		{
			name:     "check",
			opts:     Options{Export: "Types", Check: true},
			contains: []string{"g.Render(context.Background())", `"path/filepath"`, "is out of date"},
			excludes: []string{"g.Generate"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := Source(tt.opts)
			require.NoError(t, err)
			out := string(src)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestSource_InvalidExport(t *testing.T) {
	_, err := Source(Options{Export: "Types(); os.Exit"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid export name")
}

const mainSrc = `package main

import "fmt"

// Types is exported.
func Types() string { return "t" }

func main() {
	fmt.Println(Types())
}
`

func TestRemoveMain(t *testing.T) {
	dir := t.TempDir()
	withMain := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(withMain, []byte(mainSrc), 0o644))
	without := filepath.Join(dir, "types.go")
	require.NoError(t, os.WriteFile(without, []byte("package main\n\nfunc helper() {}\n"), 0o644))

	got, err := RemoveMain(withMain)
	require.NoError(t, err)
	assert.Contains(t, string(got), "// Types is exported.\nfunc Types() string")
	assert.NotContains(t, string(got), "func main()")

	got, err = RemoveMain(without)
	require.NoError(t, err)
	assert.Nil(t, got)

	bad := filepath.Join(dir, "bad.go")
	require.NoError(t, os.WriteFile(bad, []byte("package main\nfunc {"), 0o644))
	_, err = RemoveMain(bad)
	assert.Error(t, err)
}

func TestOverlay(t *testing.T) {
	pkg := t.TempDir()
	for name, src := range map[string]string{
		"main.go":      mainSrc,
		"types.go":     "package main\n\ntype User struct{}\n",
		"main_test.go": "package main\n\nfunc main() {}\n",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(pkg, name), []byte(src), 0o644))
	}

	tmp := t.TempDir()
	overlay, err := Overlay(Options{Export: "Types", PkgDir: pkg}, tmp)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		filepath.Join(pkg, "main.go"):  filepath.Join(tmp, "main.go"),
		filepath.Join(pkg, runnerFile): filepath.Join(tmp, runnerFile),
	}, overlay)

	runner, err := os.ReadFile(filepath.Join(tmp, runnerFile))
	require.NoError(t, err)
	assert.Contains(t, string(runner), "func main() {")
}
