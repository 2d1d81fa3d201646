// Package sink writes generated Elm modules to their destination.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"
)

// Sink receives generated files. Implementations are safe for concurrent use.
type Sink interface {
	// WriteFile stores content at a slash-separated path relative to the sink.
	WriteFile(ctx context.Context, path string, content []byte) error
}

// FilesystemSink writes below a directory. Files are written to a temporary
// sibling first and renamed into place, so readers never see partial output.
type FilesystemSink struct {
	// Root is the output directory. It is created on first write.
	Root string

	// Mode is the permission of written files; zero means 0644.
	Mode os.FileMode
}

// NewFilesystemSink returns a sink writing below root.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Root: root, Mode: 0o644}
}

var tempSeq atomic.Uint64

// WriteFile implements Sink.
func (s *FilesystemSink) WriteFile(ctx context.Context, name string, content []byte) error {
	if err := ValidatePath(name); err != nil {
		return fmt.Errorf("invalid path %q: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	// os.Root refuses to follow anything that leaves the directory.
	root, err := os.OpenRoot(s.Root)
	if err != nil {
		return fmt.Errorf("opening output directory: %w", err)
	}
	defer root.Close()

	dir := path.Dir(name)
	if dir != "." {
		if err := root.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	mode := s.Mode
	if mode == 0 {
		mode = 0o644
	}
	tmp := path.Join(dir, ".elmgen-"+strconv.Itoa(os.Getpid())+"-"+strconv.FormatUint(tempSeq.Add(1), 10)+".tmp")
	f, err := root.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	_, werr := f.Write(content)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = root.Remove(tmp)
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		_ = root.Remove(tmp)
		return err
	}
	if err := root.Rename(tmp, name); err != nil {
		_ = root.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

// ReadFile returns the current content at a sink path.
// A missing file reports an error matching fs.ErrNotExist.
func (s *FilesystemSink) ReadFile(name string) ([]byte, error) {
	if err := ValidatePath(name); err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", name, err)
	}
	root, err := os.OpenRoot(s.Root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("opening output directory: %w", err)
	}
	defer root.Close()
	return root.ReadFile(name)
}

// MemorySink keeps written files in memory.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// WriteFile implements Sink.
func (s *MemorySink) WriteFile(ctx context.Context, name string, content []byte) error {
	if err := ValidatePath(name); err != nil {
		return fmt.Errorf("invalid path %q: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = append([]byte(nil), content...)
	return nil
}

// Get returns a copy of the file at name, or nil.
func (s *MemorySink) Get(name string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.files[name]
	if !ok {
		return nil
	}
	return append([]byte(nil), content...)
}

// Paths returns the written paths in lexical order.
func (s *MemorySink) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Reset drops every stored file.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string][]byte)
}

// ValidatePath reports whether p is a clean, relative, slash-separated path
// that stays inside the sink.
func ValidatePath(p string) error {
	switch {
	case p == "":
		return errors.New("path is empty")
	case strings.HasPrefix(p, "/"), filepath.IsAbs(p), filepath.VolumeName(p) != "", hasDriveLetter(p):
		return errors.New("absolute paths not allowed")
	case strings.Contains(p, `\`):
		return errors.New("path must use forward slashes")
	}
	for _, elem := range strings.Split(p, "/") {
		if elem == ".." {
			return errors.New("path traversal not allowed")
		}
	}
	if clean := path.Clean(p); clean != p {
		return fmt.Errorf("path is not clean (expected %q)", clean)
	}
	return nil
}

func hasDriveLetter(p string) bool {
	return len(p) >= 2 && p[1] == ':' && ('a' <= p[0] && p[0] <= 'z' || 'A' <= p[0] && p[0] <= 'Z')
}

// ValidateModuleName reports whether name is a dotted Elm module name such
// as "Api.Types": every segment starts with an uppercase letter and holds
// only letters, digits and underscores.
func ValidateModuleName(name string) error {
	if name == "" {
		return errors.New("module name is empty")
	}
	for _, seg := range strings.Split(name, ".") {
		if seg == "" {
			return fmt.Errorf("module name %q has an empty segment", name)
		}
		for i, r := range seg {
			if i == 0 && !unicode.IsUpper(r) {
				return fmt.Errorf("module name segment %q must start with an uppercase letter", seg)
			}
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
				return fmt.Errorf("module name segment %q contains %q", seg, r)
			}
		}
	}
	return nil
}

// ModulePath returns the file path of an Elm module, "Api.Types" -> "Api/Types.elm".
func ModulePath(module string) (string, error) {
	if err := ValidateModuleName(module); err != nil {
		return "", err
	}
	return strings.ReplaceAll(module, ".", "/") + ".elm", nil
}
