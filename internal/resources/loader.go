// internal/resources/loader.go
package resources

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// ErrFontNotFound is returned when no source is registered for a family.
var ErrFontNotFound = errors.New("font not found")

// FontLoader produces a face for a font family. Implementations must be safe
// for concurrent use; the GC pass loads families in parallel.
type FontLoader interface {
	Load(family string) (FontImpl, error)
}

// Registry is a FontLoader backed by in-memory faces, raw font bytes and font
// file paths, looked up by lower-cased family name.
type Registry struct {
	mu    sync.RWMutex
	faces map[string]FontImpl
	bytes map[string][]byte
	paths map[string][]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{faces: map[string]FontImpl{}, bytes: map[string][]byte{}, paths: map[string][]string{}}
}

// NewDefaultRegistry registers Go Regular for the generic families.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, fam := range []string{"sans-serif", "serif", "monospace", "go", "system-ui"} {
		r.RegisterBytes(fam, goregularBytes())
	}
	return r
}

// RegisterFace registers a ready face.
func (r *Registry) RegisterFace(family string, f FontImpl) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faces[strings.ToLower(family)] = f
}

// RegisterBytes registers font file contents, parsed on first load.
func (r *Registry) RegisterBytes(family string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bytes[strings.ToLower(family)] = data
}

// RegisterPaths registers font files; the first readable one is used.
func (r *Registry) RegisterPaths(family string, paths ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(family)
	r.paths[key] = append(r.paths[key], paths...)
}

// Load implements FontLoader.
func (r *Registry) Load(family string) (FontImpl, error) {
	key := strings.ToLower(family)
	r.mu.RLock()
	face, hasFace := r.faces[key]
	data, hasBytes := r.bytes[key]
	paths := r.paths[key]
	r.mu.RUnlock()

	if hasFace {
		return face, nil
	}
	if hasBytes {
		return ParseSfnt(data)
	}
	var errs []error
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		f, err := ParseSfnt(b)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		return f, nil
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("load font family %q: %w", family, errors.Join(errs...))
	}
	return nil, fmt.Errorf("font family %q: %w", family, ErrFontNotFound)
}

// MockLoader returns the same mock face for every family.
type MockLoader struct {
	Font FontImpl
}

// Load implements FontLoader.
func (m MockLoader) Load(string) (FontImpl, error) {
	if m.Font == nil {
		return NewMockFont(), nil
	}
	return m.Font, nil
}
