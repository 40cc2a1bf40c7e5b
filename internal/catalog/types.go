package catalog

import "sort"

// DatasetConfig is the view configuration for one dataset: its data layers
// and either a responsive or a static grid layout of components.
type DatasetConfig struct {
	Name             string            `yaml:"name" json:"name"`
	Description      string            `yaml:"description" json:"description"`
	Public           bool              `yaml:"public,omitempty" json:"public,omitempty"`
	Layers           []Layer           `yaml:"layers" json:"layers"`
	ResponsiveLayout *ResponsiveLayout `yaml:"responsiveLayout,omitempty" json:"responsiveLayout,omitempty"`
	StaticLayout     []PlacedComponent `yaml:"staticLayout,omitempty" json:"staticLayout,omitempty"`
}

// Components returns the placed components of whichever layout is set.
func (c *DatasetConfig) Components() []PlacedComponent {
	if c.ResponsiveLayout != nil {
		return c.ResponsiveLayout.Components
	}
	return c.StaticLayout
}

// Layer references one slice of a dataset's data.
type Layer struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"` // upper-cased Name
	URL  string `yaml:"url" json:"url"`
}

// ResponsiveLayout maps breakpoint widths to column boundaries.
type ResponsiveLayout struct {
	Columns    map[int][]int     `yaml:"columns" json:"columns"`
	Components []PlacedComponent `yaml:"components" json:"components"`
}

// Breakpoints returns the configured widths, widest first.
func (l *ResponsiveLayout) Breakpoints() []int {
	widths := make([]int, 0, len(l.Columns))
	for w := range l.Columns {
		widths = append(widths, w)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(widths)))
	return widths
}

// PlacedComponent positions a presentation component on the grid.
// Coordinates and sizes are pointers so that an omitted value and an
// authored zero stay distinct through encoding and reach the schema check.
type PlacedComponent struct {
	Component string         `yaml:"component" json:"component"`
	Props     map[string]any `yaml:"props,omitempty" json:"props,omitempty"`
	X         *int           `yaml:"x" json:"x,omitempty"`
	Y         *int           `yaml:"y" json:"y,omitempty"`
	W         *int           `yaml:"w,omitempty" json:"w,omitempty"`
	H         *int           `yaml:"h,omitempty" json:"h,omitempty"`
}

// Width is W, defaulting to one grid unit.
func (p PlacedComponent) Width() int { return span(p.W) }

// Height is H, defaulting to one grid unit.
func (p PlacedComponent) Height() int { return span(p.H) }

func span(v *int) int {
	if v == nil || *v <= 0 {
		return 1
	}
	return *v
}

// Summary is the listing projection of a public dataset.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Entry pairs a dataset id with its configuration.
type Entry struct {
	ID     string
	Config *DatasetConfig
}

// At returns a pointer to v, for building coordinates and sizes in code.
func At(v int) *int { return &v }
