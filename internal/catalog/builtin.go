package catalog

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed builtin.yaml
var builtinCatalog []byte

// Builtin returns the entries of the catalog compiled into the binary.
func Builtin() ([]Entry, error) {
	l := NewLoader()
	if err := l.AddYAML("builtin.yaml", builtinCatalog); err != nil {
		return nil, fmt.Errorf("failed to load built-in catalog: %w", err)
	}
	return l.Entries(), nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry of built-in datasets. It
// panics if the built-in catalog or the schema cannot be loaded.
func Default() *Registry {
	defaultOnce.Do(func() {
		entries, err := Builtin()
		if err != nil {
			panic(err)
		}
		reg, err := New(entries)
		if err != nil {
			panic(fmt.Errorf("failed to build default registry: %w", err))
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

// Open builds a registry from the built-in catalog followed by the
// catalog files in dir, if dir is non-empty.
func Open(dir string, opts ...Option) (*Registry, error) {
	l := NewLoader()
	if err := l.AddYAML("builtin.yaml", builtinCatalog); err != nil {
		return nil, fmt.Errorf("failed to load built-in catalog: %w", err)
	}
	if dir != "" {
		if err := l.AddDir(dir); err != nil {
			return nil, err
		}
	}
	return New(l.Entries(), opts...)
}
