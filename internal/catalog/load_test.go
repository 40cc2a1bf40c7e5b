package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const familyDoc = `
urlPrefix: https://data.example.com/vitessce/
families:
  wang:
    description: Multiplexed imaging of mouse brain
    layers: [cells, molecules]
datasets:
  - id: wang-2019
    family: wang
    name: Wang
    public: true
    staticLayout:
      - component: SpatialSubscriber
        x: 0
        y: 0
        w: 6
        h: 4
  - id: wang-2019-cells
    family: wang
    name: Wang (cells only)
    description: Cells only
    layers: [cells]
    staticLayout:
      - component: ScatterplotSubscriber
        props: { mapping: UMAP }
        x: 0
        y: 0
`

func TestLoader_FamilyInheritance(t *testing.T) {
	l := NewLoader()
	require.NoError(t, l.AddYAML("wang.yaml", []byte(familyDoc)))

	entries := l.Entries()
	require.Len(t, entries, 2)

	full := entries[0].Config
	assert.Equal(t, "wang-2019", entries[0].ID)
	assert.Equal(t, "Multiplexed imaging of mouse brain", full.Description)
	assert.Equal(t, []Layer{
		{Name: "cells", Type: "CELLS", URL: "https://data.example.com/vitessce/wang.cells.json"},
		{Name: "molecules", Type: "MOLECULES", URL: "https://data.example.com/vitessce/wang.molecules.json"},
	}, full.Layers)
	assert.True(t, full.Public)

	cellsOnly := entries[1].Config
	assert.Equal(t, "Cells only", cellsOnly.Description)
	require.Len(t, cellsOnly.Layers, 1)
	assert.Equal(t, "UMAP", cellsOnly.StaticLayout[0].Props["mapping"])
	assert.False(t, cellsOnly.Public)
}

func TestLoader_UnknownFamily(t *testing.T) {
	doc := `
datasets:
  - id: orphan
    family: nobody
    name: Orphan
    staticLayout: []
`
	err := NewLoader().AddYAML("orphan.yaml", []byte(doc))
	assert.ErrorContains(t, err, `unknown family "nobody"`)
}

func TestLoader_FamilyDeclaredTwice(t *testing.T) {
	l := NewLoader()
	require.NoError(t, l.AddYAML("a.yaml", []byte(familyDoc)))
	err := l.AddYAML("b.yaml", []byte("families:\n  wang:\n    description: again\n"))
	assert.ErrorContains(t, err, "already declared")
}

func TestLoader_MissingID(t *testing.T) {
	doc := `
datasets:
  - name: Nameless
    staticLayout: []
`
	err := NewLoader().AddYAML("nameless.yaml", []byte(doc))
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestLoader_Markdown(t *testing.T) {
	doc := `---
name: Spraggins
public: true
layers: [cells, raster]
staticLayout:
  - component: SpatialSubscriber
    x: 0
    y: 0
---
High-resolution imaging mass spectrometry of human kidney.
`
	l := NewLoader()
	require.NoError(t, l.AddMarkdown("catalog/spraggins-2020.md", []byte(doc)))

	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "spraggins-2020", entries[0].ID)

	cfg := entries[0].Config
	assert.Equal(t, "Spraggins", cfg.Name)
	assert.Equal(t, "High-resolution imaging mass spectrometry of human kidney.", cfg.Description)
	assert.Equal(t, DefaultURLPrefix+"/spraggins-2020.raster.json", cfg.Layers[1].URL)
	require.Len(t, cfg.StaticLayout, 1)
	require.NotNil(t, cfg.StaticLayout[0].X)
	assert.Equal(t, 0, *cfg.StaticLayout[0].X)
}

func TestLoader_AddDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	write("b.md", "---\nid: from-markdown\nname: B\ndescription: B\nstaticLayout: []\n---\n")
	write("a.yaml", familyDoc)
	write("notes.txt", "ignored")
	write(".hidden.yaml", "not: [valid")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o700))

	files, err := CatalogFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.md")}, files)

	l := NewLoader()
	require.NoError(t, l.AddDir(dir))
	entries := l.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "wang-2019", entries[0].ID)
	assert.Equal(t, "from-markdown", entries[2].ID)
}

func TestLoader_RejectsUnknownKeys(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		key  string
	}{
		{
			name: "dataset field",
			doc:  "datasets:\n  - id: typo\n    name: Typo\n    pubic: true\n    staticLayout: []\n",
			key:  "pubic",
		},
		{
			name: "component field",
			doc:  "datasets:\n  - id: typo\n    name: Typo\n    staticLayout:\n      - component: Description\n        x: 0\n        y: 0\n        widht: 4\n",
			key:  "widht",
		},
		{
			name: "family field",
			doc:  "families:\n  fam:\n    descripton: oops\n",
			key:  "descripton",
		},
		{
			name: "top-level field",
			doc:  "url_prefix: https://example.com\n",
			key:  "url_prefix",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewLoader().AddYAML("typo.yaml", []byte(tt.doc))
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestLoader_MarkdownRejectsUnknownKeys(t *testing.T) {
	doc := "---\nname: Typo\npubic: true\nstaticLayout: []\n---\nBody.\n"
	err := NewLoader().AddMarkdown("typo.md", []byte(doc))
	assert.ErrorContains(t, err, "pubic")
}

func TestLoader_EmptyDocument(t *testing.T) {
	l := NewLoader()
	require.NoError(t, l.AddYAML("empty.yaml", nil))
	assert.Empty(t, l.Entries())
}

func TestLoader_AuthoredZeroSizeIsReported(t *testing.T) {
	doc := `
datasets:
  - id: flat
    name: Flat
    description: zero-sized components
    layers: []
    staticLayout:
      - component: Description
        x: 0
        y: 0
        w: 0
      - component: Status
        x: 1
        y: 0
        h: 0
`
	l := NewLoader()
	require.NoError(t, l.AddYAML("flat.yaml", []byte(doc)))

	cfg := l.Entries()[0].Config
	require.NotNil(t, cfg.StaticLayout[0].W)
	assert.Equal(t, 0, *cfg.StaticLayout[0].W)
	assert.Nil(t, cfg.StaticLayout[0].H)

	reg, _ := observedRegistry(t, l.Entries())
	reports := reg.ValidateAll()
	require.Len(t, reports, 1)
	assert.False(t, reports[0].Result.Valid)
	require.Len(t, reports[0].Result.Errors, 2)
	assert.Contains(t, reports[0].Result.Errors[0].Path, "staticLayout/0")
	assert.Contains(t, reports[0].Result.Errors[1].Path, "staticLayout/1")
}

func TestLoader_AddFileUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	assert.ErrorContains(t, NewLoader().AddFile(path), "unsupported catalog file")
}

func TestOpen_WithOverlay(t *testing.T) {
	dir := t.TempDir()
	overlay := `
datasets:
  - id: extra
    family: linnarsson
    name: Linnarsson (extra)
    public: true
    staticLayout:
      - component: HeatmapSubscriber
        x: 0
        y: 0
        w: 12
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.yaml"), []byte(overlay), 0o600))

	reg, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, 5, reg.Len())

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "linnarsson-2018", list[0].ID)
	assert.Equal(t, "extra", list[1].ID)
	assert.Equal(t, "Spatial organization of the somatosensory cortex revealed by cyclic smFISH", list[1].Description)
}

func TestOpen_DuplicateAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	dup := "datasets:\n  - id: linnarsson-2018\n    name: again\n    staticLayout: []\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dup.yaml"), []byte(dup), 0o600))

	_, err := Open(dir)
	assert.ErrorIs(t, err, ErrDuplicateDataset)
}

func TestDeriveLayers(t *testing.T) {
	got := DeriveLayers("https://example.com/", "fam", []string{"genes"})
	assert.Equal(t, []Layer{{Name: "genes", Type: "GENES", URL: "https://example.com/fam.genes.json"}}, got)
	assert.NotNil(t, DeriveLayers(DefaultURLPrefix, "fam", nil))
}
