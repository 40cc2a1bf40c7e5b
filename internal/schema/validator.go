package schema

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/qri-io/jsonpointer"
	"github.com/qri-io/jsonschema"
)

//go:embed dataset.schema.json
var datasetSchemaData []byte

// Violation is a single structural problem found in a candidate document.
type Violation struct {
	Path    string `json:"path"`            // JSON pointer into the candidate
	Message string `json:"message"`         // rule that was violated
	Value   any    `json:"value,omitempty"` // offending value, when known
}

func (v Violation) String() string {
	path := v.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("%s: %s", path, v.Message)
}

// Result is the verdict for one candidate.
type Result struct {
	Valid  bool        `json:"valid"`
	Errors []Violation `json:"errors"`
}

// Summary renders the violations one per line.
func (r Result) Summary() string {
	lines := make([]string, 0, len(r.Errors))
	for _, v := range r.Errors {
		lines = append(lines, v.String())
	}
	return strings.Join(lines, "\n")
}

// Validator checks documents against the compiled dataset schema.
// It is safe for concurrent use.
type Validator struct {
	mu     sync.Mutex
	schema *jsonschema.Schema
}

// New compiles the embedded dataset schema.
func New() (*Validator, error) {
	return Compile(datasetSchemaData)
}

// Compile builds a Validator from an arbitrary schema document. Every
// $ref must point into the document itself and resolve.
func Compile(doc []byte) (*Validator, error) {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(doc, rs); err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	var root any
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	if err := checkRefs(root, root); err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return &Validator{schema: rs}, nil
}

// checkRefs walks node and resolves each $ref against root.
func checkRefs(root, node any) error {
	switch t := node.(type) {
	case map[string]any:
		if ref, ok := t["$ref"].(string); ok {
			if !strings.HasPrefix(ref, "#") {
				return fmt.Errorf("unsupported non-local $ref %q", ref)
			}
			ptr, err := jsonpointer.Parse(ref)
			if err != nil {
				return fmt.Errorf("bad $ref %q: %w", ref, err)
			}
			target, err := ptr.Eval(root)
			if err != nil {
				return fmt.Errorf("unresolved $ref %q: %w", ref, err)
			}
			// missing keys evaluate to nil without an error
			if target == nil {
				return fmt.Errorf("unresolved $ref %q", ref)
			}
		}
		for _, v := range t {
			if err := checkRefs(root, v); err != nil {
				return err
			}
		}
	case []any:
		for _, v := range t {
			if err := checkRefs(root, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Must is like New but panics if the embedded schema is malformed.
func Must() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

// Document returns a copy of the embedded schema source.
func Document() []byte {
	out := make([]byte, len(datasetSchemaData))
	copy(out, datasetSchemaData)
	return out
}

// Validate encodes v as JSON and validates the encoding. A nil v is
// validated as JSON null.
func (v *Validator) Validate(candidate any) Result {
	data, err := json.Marshal(candidate)
	if err != nil {
		return Result{Errors: []Violation{{Message: fmt.Sprintf("cannot encode candidate: %v", err)}}}
	}
	res, err := v.ValidateJSON(data)
	if err != nil {
		return Result{Errors: []Violation{{Message: err.Error()}}}
	}
	return res
}

// ValidateJSON validates a raw JSON document.
func (v *Validator) ValidateJSON(data []byte) (Result, error) {
	v.mu.Lock()
	keyErrs, err := v.schema.ValidateBytes(context.Background(), data)
	v.mu.Unlock()
	if err != nil {
		return Result{}, fmt.Errorf("invalid JSON document: %w", err)
	}

	res := Result{Valid: len(keyErrs) == 0, Errors: make([]Violation, 0, len(keyErrs))}
	for _, ke := range keyErrs {
		res.Errors = append(res.Errors, Violation{
			Path:    ke.PropertyPath,
			Message: ke.Message,
			Value:   ke.InvalidValue,
		})
	}
	// keyword evaluation walks maps; keep reports stable
	sort.SliceStable(res.Errors, func(i, j int) bool {
		if res.Errors[i].Path == res.Errors[j].Path {
			return res.Errors[i].Message < res.Errors[j].Message
		}
		return res.Errors[i].Path < res.Errors[j].Path
	})
	return res, nil
}
