package catalog

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vitessce/vitcat/internal/schema"
)

var (
	// ErrDatasetNotFound indicates the dataset ID is not in the catalog
	ErrDatasetNotFound = errors.New("dataset not found")
	// ErrDuplicateDataset indicates two entries share an ID
	ErrDuplicateDataset = errors.New("duplicate dataset id")
	// ErrInvalidEntry indicates an entry that cannot be registered at all
	ErrInvalidEntry = errors.New("invalid catalog entry")
)

// Registry is the immutable table of dataset configurations. It is built
// once and only read afterwards, so it needs no locking.
type Registry struct {
	order     []string
	byID      map[string]*DatasetConfig
	validator *schema.Validator
	logger    *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the sink for validation warnings.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithValidator overrides the schema validator.
func WithValidator(v *schema.Validator) Option {
	return func(r *Registry) { r.validator = v }
}

// New builds a Registry from entries in declaration order.
func New(entries []Entry, opts ...Option) (*Registry, error) {
	r := &Registry{
		order:  make([]string, 0, len(entries)),
		byID:   make(map[string]*DatasetConfig, len(entries)),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.validator == nil {
		v, err := schema.New()
		if err != nil {
			return nil, err
		}
		r.validator = v
	}

	for _, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: empty id", ErrInvalidEntry)
		}
		if e.Config == nil {
			return nil, fmt.Errorf("%w: id=%s: no configuration", ErrInvalidEntry, e.ID)
		}
		if _, ok := r.byID[e.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDataset, e.ID)
		}
		if err := checkLayerNames(e.Config.Layers); err != nil {
			return nil, fmt.Errorf("%w: id=%s: %v", ErrInvalidEntry, e.ID, err)
		}
		r.order = append(r.order, e.ID)
		r.byID[e.ID] = e.Config.Clone()
	}
	return r, nil
}

func checkLayerNames(layers []Layer) error {
	seen := make(map[string]struct{}, len(layers))
	for _, l := range layers {
		if _, ok := seen[l.Name]; ok {
			return fmt.Errorf("layer %q listed twice", l.Name)
		}
		seen[l.Name] = struct{}{}
	}
	return nil
}

// List returns summaries of the public datasets in declaration order.
func (r *Registry) List() []Summary {
	out := make([]Summary, 0, len(r.order))
	for _, id := range r.order {
		c := r.byID[id]
		if !c.Public {
			continue
		}
		out = append(out, Summary{ID: id, Name: c.Name, Description: c.Description})
	}
	return out
}

// Get returns a copy of the dataset configuration for id. The record is
// checked against the schema on every call; violations are logged and
// do not affect the result.
func (r *Registry) Get(id string) (*DatasetConfig, error) {
	c, ok := r.byID[id]
	if !ok {
		r.logger.Warn("unknown dataset requested", zap.String("dataset", id))
		return nil, ErrDatasetNotFound
	}

	if res := r.validator.Validate(c); !res.Valid {
		r.logger.Warn("dataset validation failed",
			zap.String("dataset", id),
			zap.Any("violations", res.Errors),
		)
	}
	return c.Clone(), nil
}

// IDs returns every dataset id, public or not, in declaration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Len is the number of datasets in the catalog.
func (r *Registry) Len() int { return len(r.order) }

// Report is the outcome of checking one catalog entry.
type Report struct {
	ID       string        `json:"id"`
	Result   schema.Result `json:"result"`
	Overlaps []Overlap     `json:"overlaps,omitempty"`
}

// OK reports whether the entry passed both the schema and layout checks.
func (rep Report) OK() bool {
	return rep.Result.Valid && len(rep.Overlaps) == 0
}

// ValidateAll checks every entry against the schema and for overlapping
// components, without logging.
func (r *Registry) ValidateAll() []Report {
	reports := make([]Report, 0, len(r.order))
	for _, id := range r.order {
		c := r.byID[id]
		reports = append(reports, Report{
			ID:       id,
			Result:   r.validator.Validate(c),
			Overlaps: Overlaps(c.Components()),
		})
	}
	return reports
}
