package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/broady/elmgen/elmgen/ir"
)

// JSONProvider reads a schema from a JSON IR document, as written by
// ir.EncodeSchema or the dump command.
type JSONProvider struct{}

// JSONInputOptions configures JSON extraction. Exactly one of Path and
// Reader must be set.
type JSONInputOptions struct {
	Path   string
	Reader io.Reader
}

// BuildSchema decodes and validates the document.
func (p *JSONProvider) BuildSchema(ctx context.Context, opts JSONInputOptions) (*ir.Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := opts.Reader
	switch {
	case opts.Path != "" && r != nil:
		return nil, errors.New("both Path and Reader are set")
	case opts.Path != "":
		f, err := os.Open(opts.Path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	case r == nil:
		return nil, errors.New("no schema input specified")
	}

	s, err := ir.DecodeSchema(r)
	if err != nil {
		return nil, err
	}
	if errs := s.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid schema: %w", errors.Join(errs...))
	}
	return s, nil
}
