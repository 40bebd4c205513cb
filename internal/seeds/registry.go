package seeds

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/danmuck/seedctl/internal/project"
	"github.com/danmuck/seedctl/internal/tools"
)

var (
	ErrAdapterExists   = errors.New("adapter already registered")
	ErrAdapterNil      = errors.New("adapter is nil")
	ErrInvalidMetadata = errors.New("invalid adapter metadata")
	ErrUnknownType     = errors.New("adapter type must be a supported project type")
)

// Registry stores adapters by project type.
type Registry struct {
	mu    sync.RWMutex
	items map[project.Type]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[project.Type]Adapter)}
}

// DefaultRegistry registers the four built-in adapters. overrides replaces
// the command line of individual ecosystems.
func DefaultRegistry(runner tools.CommandRunner, overrides map[project.Type]string) *Registry {
	r := NewRegistry()
	for _, a := range []*ShellAdapter{
		NewPrismaAdapter(runner),
		NewDjangoAdapter(runner),
		NewAlembicAdapter(runner),
		NewSequelizeAdapter(runner),
	} {
		if line, ok := overrides[a.Type()]; ok {
			a = a.WithCommandLine(line)
		}
		// Built-in metadata is static and valid.
		_ = r.Register(a)
	}
	return r
}

// ValidateMetadata checks required metadata fields and id format.
func ValidateMetadata(meta Metadata) error {
	id := strings.TrimSpace(meta.ID)
	name := strings.TrimSpace(meta.Name)
	desc := strings.TrimSpace(meta.Description)
	if id == "" || name == "" || desc == "" {
		return fmt.Errorf("%w: id, name, and description are required", ErrInvalidMetadata)
	}
	if !isValidID(id) {
		return fmt.Errorf("%w: invalid id format %q", ErrInvalidMetadata, id)
	}
	return nil
}

// Register adds an adapter to the registry.
func (r *Registry) Register(a Adapter) error {
	if a == nil {
		return ErrAdapterNil
	}
	if err := ValidateMetadata(a.Metadata()); err != nil {
		return err
	}
	kind := a.Type()
	if kind == project.Unknown || strings.TrimSpace(string(kind)) == "" {
		return ErrUnknownType
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[kind]; ok {
		return fmt.Errorf("%w: %s", ErrAdapterExists, kind)
	}
	r.items[kind] = a
	return nil
}

// Resolve returns the adapter for a project type.
func (r *Registry) Resolve(kind project.Type) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[kind]
	return a, ok
}

// Types returns registered project types in detection priority order,
// followed by any non built-in types sorted by name.
func (r *Registry) Types() []project.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]project.Type, 0, len(r.items))
	seen := make(map[project.Type]bool, len(r.items))
	for _, kind := range project.Supported() {
		if _, ok := r.items[kind]; ok {
			out = append(out, kind)
			seen[kind] = true
		}
	}
	var extra []project.Type
	for kind := range r.items {
		if !seen[kind] {
			extra = append(extra, kind)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

// ListMetadata returns deterministic metadata ordering by id.
func (r *Registry) ListMetadata() []Metadata {
	r.mu.RLock()
	list := make([]Metadata, 0, len(r.items))
	for _, a := range r.items {
		list = append(list, a.Metadata())
	}
	r.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}

// ListSeeders detects the project type and enumerates files in that
// ecosystem's seed directory. Unknown projects and missing directories
// yield an empty list.
func (r *Registry) ListSeeders(projectPath string) (project.Type, []Descriptor) {
	kind := project.Detect(projectPath)
	return kind, r.Seeders(projectPath, kind)
}

// Seeders enumerates seed-definition files for an already detected type.
func (r *Registry) Seeders(projectPath string, kind project.Type) []Descriptor {
	out := make([]Descriptor, 0)
	a, ok := r.Resolve(kind)
	if !ok {
		return out
	}
	layout := a.Layout()
	if layout.Match == nil {
		return out
	}
	dir := filepath.Join(projectPath, filepath.FromSlash(layout.Dir))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return out
	}
	for _, entry := range entries {
		if entry.IsDir() || !layout.Match(entry.Name()) {
			continue
		}
		out = append(out, Descriptor{
			Name: entry.Name(),
			Path: filepath.Join(dir, entry.Name()),
			Type: layout.Tag,
		})
	}
	return out
}

func isValidID(id string) bool {
	if id == "" {
		return false
	}
	lastSep := false
	for i := 0; i < len(id); i++ {
		c := id[i]
		isLower := c >= 'a' && c <= 'z'
		isDigit := c >= '0' && c <= '9'
		isSep := c == '.' || c == '-' || c == '_'
		if !(isLower || isDigit || isSep) {
			return false
		}
		if i == 0 || i == len(id)-1 {
			if isSep {
				return false
			}
		}
		if isSep && lastSep {
			return false
		}
		lastSep = isSep
	}
	return true
}
