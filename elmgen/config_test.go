package elmgen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyConfigDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input *Config
		want  Config
	}{
		{
			name:  "empty config gets defaults",
			input: &Config{Module: "Api"},
			want:  Config{Module: "Api", Provider: ProviderSource, OutDir: "."},
		},
		{
			name:  "explicit values preserved",
			input: &Config{Module: "Api", Provider: ProviderJSON, OutDir: "src"},
			want:  Config{Module: "Api", Provider: ProviderJSON, OutDir: "src"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := *tt.input
			got := applyConfigDefaults(tt.input)
			assert.Equal(t, tt.want, *got)
			assert.Equal(t, before, *tt.input, "input must not be mutated")
		})
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(`
module: Api.Types
out_dir: ./frontend/src
packages: [./api, ./api/v2]
types:
  - User
query: [SearchParams]
query_fields: [Sort]
header: |
  Generated by elmgen.
  Do not edit.
`))
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Module:      "Api.Types",
		OutDir:      "./frontend/src",
		Packages:    []string{"./api", "./api/v2"},
		Types:       []string{"User"},
		Query:       []string{"SearchParams"},
		QueryFields: []string{"Sort"},
		Header:      "Generated by elmgen.\nDo not edit.\n",
	}, cfg)
}

func TestParseConfig_Errors(t *testing.T) {
	_, err := ParseConfig(strings.NewReader("module: Api\nmodul: typo\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field modul not found")

	cfg, err := ParseConfig(strings.NewReader(""))
	require.NoError(t, err, "an empty file is an empty config")
	assert.Equal(t, &Config{}, cfg)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte("module: Api\npackages: [./api]\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Api", cfg.Module)
	require.NoError(t, cfg.Validate())

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid source", Config{Module: "Api.Types", Packages: []string{"./api"}}, ""},
		{"valid json", Config{Module: "Api", Provider: ProviderJSON, Input: "schema.json"}, ""},
		{"valid reflection", Config{Module: "Api", Provider: ProviderReflection}, ""},
		{"missing module", Config{Packages: []string{"./api"}}, "module is required"},
		{"lowercase module", Config{Module: "api.Types", Packages: []string{"./api"}}, `must start with an uppercase letter`},
		{"empty segment", Config{Module: "Api..Types", Packages: []string{"./api"}}, "empty segment"},
		{"unknown provider", Config{Module: "Api", Provider: "magic"}, `provider must be one of source, reflection, json, got "magic"`},
		{"source without packages", Config{Module: "Api"}, "packages is required"},
		{"json without input", Config{Module: "Api", Provider: ProviderJSON}, "input is required"},
		{"empty package", Config{Module: "Api", Packages: []string{""}}, "packages[0] is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ApplyOverrides(t *testing.T) {
	cfg := &Config{Module: "Api", Packages: []string{"./api"}, Header: "keep"}
	err := cfg.ApplyOverrides([]string{
		"module=Api.Types",
		"query=SearchParams, Filter",
		"query=Page",
		"out_dir=./src",
	})
	require.NoError(t, err)
	assert.Equal(t, "Api.Types", cfg.Module)
	assert.Equal(t, []string{"SearchParams", "Filter", "Page"}, cfg.Query)
	assert.Equal(t, "./src", cfg.OutDir)
	assert.Equal(t, []string{"./api"}, cfg.Packages, "untouched keys keep their values")
	assert.Equal(t, "keep", cfg.Header)

	require.NoError(t, cfg.ApplyOverrides(nil))

	err = cfg.ApplyOverrides([]string{"noequals"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want key=value")

	err = cfg.ApplyOverrides([]string{"colour=blue"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "applying overrides")
}
