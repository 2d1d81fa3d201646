package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackageDirs(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{"empty", nil, []string{"."}},
		{"relative", []string{"./api"}, []string{"api"}},
		{"recursive", []string{"./api/..."}, []string{"api"}},
		{"import path", []string{"example.com/api"}, []string{"."}},
		{"dedupe", []string{"./api", "./api/...", "example.com/x", "example.com/y"}, []string{"api", "."}},
		{"absolute", []string{"/src/api"}, []string{"/src/api"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, packageDirs(tt.patterns))
		})
	}
}
