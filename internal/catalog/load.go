package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// DefaultURLPrefix is where layer files are served from unless a catalog
// document says otherwise.
const DefaultURLPrefix = "https://s3.amazonaws.com/vitessce-data/toslchan"

// Document is the on-disk form of a catalog file.
type Document struct {
	URLPrefix string            `yaml:"urlPrefix"`
	Families  map[string]Family `yaml:"families"`
	Datasets  []DatasetSource   `yaml:"datasets"`

	// Shared holds YAML anchors referenced elsewhere in the document.
	Shared map[string]any `yaml:"shared,omitempty"`
}

// Family is the data shared by datasets cut from the same source.
type Family struct {
	Description string   `yaml:"description"`
	Layers      []string `yaml:"layers"`
}

// DatasetSource is one dataset as authored. Layers are given by name only;
// type and URL are derived when the entry is resolved.
type DatasetSource struct {
	ID               string            `yaml:"id"`
	Family           string            `yaml:"family,omitempty"`
	Name             string            `yaml:"name"`
	Description      string            `yaml:"description,omitempty"`
	Public           bool              `yaml:"public,omitempty"`
	Layers           []string          `yaml:"layers,omitempty"`
	ResponsiveLayout *ResponsiveLayout `yaml:"responsiveLayout,omitempty"`
	StaticLayout     []PlacedComponent `yaml:"staticLayout,omitempty"`
}

// Loader accumulates entries from catalog documents. Families declared by
// earlier documents are visible to later ones.
type Loader struct {
	families map[string]Family
	entries  []Entry
}

// NewLoader returns an empty Loader.
func NewLoader() *Loader {
	return &Loader{families: make(map[string]Family)}
}

// Entries returns the loaded entries in load order.
func (l *Loader) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// AddYAML loads a catalog document. Keys that are not part of the document
// format are rejected.
func (l *Loader) AddYAML(name string, data []byte) error {
	var doc Document
	if err := decodeStrict(data, &doc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	for fam, f := range doc.Families {
		if _, ok := l.families[fam]; ok {
			return fmt.Errorf("%s: family %q already declared", name, fam)
		}
		l.families[fam] = f
	}
	for _, src := range doc.Datasets {
		if err := l.add(doc.URLPrefix, src); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// AddMarkdown loads a single dataset from YAML frontmatter. A non-empty
// Markdown body replaces the description.
func (l *Loader) AddMarkdown(name string, data []byte) error {
	var src DatasetSource
	body, err := frontmatter.Parse(bytes.NewReader(data), &src,
		frontmatter.NewFormat("---", "---", decodeStrict))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		src.Description = text
	}
	if src.ID == "" {
		src.ID = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	if err := l.add("", src); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// decodeStrict is yaml.Unmarshal with unknown keys treated as errors, so a
// misspelled field fails the load instead of silently taking its zero value.
func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// AddFile loads path according to its extension.
func (l *Loader) AddFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return l.AddYAML(path, data)
	case ".md":
		return l.AddMarkdown(path, data)
	default:
		return fmt.Errorf("unsupported catalog file: %s", path)
	}
}

// AddDir loads every catalog file in dir, in lexical order.
func (l *Loader) AddDir(dir string) error {
	files, err := CatalogFiles(dir)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := l.AddFile(f); err != nil {
			return err
		}
	}
	return nil
}

// CatalogFiles lists the loadable files directly inside dir.
func CatalogFiles(dir string) ([]string, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog dir: %w", err)
	}
	var files []string
	for _, de := range des {
		if de.IsDir() || strings.HasPrefix(de.Name(), ".") {
			continue
		}
		switch strings.ToLower(filepath.Ext(de.Name())) {
		case ".yaml", ".yml", ".md":
			files = append(files, filepath.Join(dir, de.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func (l *Loader) add(prefix string, src DatasetSource) error {
	if src.ID == "" {
		return fmt.Errorf("%w: dataset without id", ErrInvalidEntry)
	}
	cfg, err := l.resolve(prefix, src)
	if err != nil {
		return fmt.Errorf("dataset %s: %w", src.ID, err)
	}
	l.entries = append(l.entries, Entry{ID: src.ID, Config: cfg})
	return nil
}

func (l *Loader) resolve(prefix string, src DatasetSource) (*DatasetConfig, error) {
	if prefix == "" {
		prefix = DefaultURLPrefix
	}

	description := src.Description
	layerNames := src.Layers
	family := src.Family
	if family != "" {
		f, ok := l.families[family]
		if !ok {
			return nil, fmt.Errorf("unknown family %q", family)
		}
		if description == "" {
			description = f.Description
		}
		if layerNames == nil {
			layerNames = f.Layers
		}
	} else {
		family = src.ID
	}

	return &DatasetConfig{
		Name:             src.Name,
		Description:      description,
		Public:           src.Public,
		Layers:           DeriveLayers(prefix, family, layerNames),
		ResponsiveLayout: src.ResponsiveLayout,
		StaticLayout:     src.StaticLayout,
	}, nil
}

// DeriveLayers expands layer names into layer references for a family.
func DeriveLayers(prefix, family string, names []string) []Layer {
	layers := make([]Layer, 0, len(names))
	for _, name := range names {
		layers = append(layers, Layer{
			Name: name,
			Type: strings.ToUpper(name),
			URL:  fmt.Sprintf("%s/%s.%s.json", strings.TrimSuffix(prefix, "/"), family, name),
		})
	}
	return layers
}
