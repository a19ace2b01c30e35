package field

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrUnknownType is returned when a field type id is not registered.
	ErrUnknownType = errors.New("field: unknown field type")
	// ErrFrozen is returned by Register once the registry has been frozen.
	ErrFrozen = errors.New("field: registry is frozen")
	// ErrInvalidValue is returned when a raw value does not parse for its type.
	ErrInvalidValue = errors.New("field: invalid value")
)

// Capabilities describes what a registered field type can do.
type Capabilities struct {
	// Component names the UI component that edits values of this type.
	Component    string
	Translatable bool
	Kind         Kind
	// Normalize validates a non-empty raw scalar or reference and returns
	// its canonical form. Nil accepts the raw text unchanged.
	Normalize func(raw string) (string, error)
	// Title overrides the default display title of a value.
	Title func(v Value) string
	// Options is the default option source of a choice type. It must be a
	// pure function of the type.
	Options func() []Option
}

// Registry maps field type ids to their capabilities. It is filled once
// at startup and frozen; after Freeze every method is safe for concurrent
// use without locking.
type Registry struct {
	types  map[string]Capabilities
	frozen bool
}

// NewRegistry returns an empty, writable registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Capabilities)}
}

// Register adds a field type. Ids must be unique; choice types must
// provide an option source.
func (r *Registry) Register(id string, c Capabilities) error {
	if r.frozen {
		return ErrFrozen
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("field: empty type id")
	}
	if _, ok := r.types[id]; ok {
		return fmt.Errorf("field: type %q already registered", id)
	}
	if c.Kind == KindChoice && c.Options == nil {
		return fmt.Errorf("field: choice type %q has no option source", id)
	}
	r.types[id] = c
	return nil
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	return r.frozen
}

// Resolve returns the capabilities of a field type.
func (r *Registry) Resolve(id string) (Capabilities, bool) {
	c, ok := r.types[id]
	return c, ok
}

// IDs returns every registered type id in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.types))
	for id := range r.types {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsChoice reports whether id is a registered choice type.
func (r *Registry) IsChoice(id string) bool {
	c, ok := r.types[id]
	return ok && c.Kind == KindChoice
}

// ChoiceOptions instantiates the default option list of a choice type.
func (r *Registry) ChoiceOptions(id string) ([]Option, error) {
	c, ok := r.types[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, id)
	}
	if c.Kind != KindChoice {
		return nil, fmt.Errorf("field: type %q is not a choice type", id)
	}
	return c.Options(), nil
}

// Zero returns the zero value of a field type: empty text, no reference,
// or the first option of a choice.
func (r *Registry) Zero(id string) (Value, error) {
	c, ok := r.types[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, id)
	}
	switch c.Kind {
	case KindReference:
		return Reference{Type: id}, nil
	case KindChoice:
		code := 0
		if opts := c.Options(); len(opts) > 0 {
			code = opts[0].Code
		}
		return Choice{Type: id, Code: code}, nil
	default:
		return Scalar{Type: id}, nil
	}
}

// Parse builds a value of type id from its canonical string form. The
// empty string parses to the zero value.
func (r *Registry) Parse(id, raw string) (Value, error) {
	c, ok := r.types[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, id)
	}
	if raw == "" {
		return r.Zero(id)
	}
	switch c.Kind {
	case KindChoice:
		code, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, id, raw, err)
		}
		if _, found := optionLabel(c.Options(), code); !found {
			return nil, fmt.Errorf("%w: %s has no option %d", ErrInvalidValue, id, code)
		}
		return Choice{Type: id, Code: code}, nil
	case KindReference:
		ref, err := normalize(c, id, raw)
		if err != nil {
			return nil, err
		}
		return Reference{Type: id, ID: ref}, nil
	default:
		text, err := normalize(c, id, raw)
		if err != nil {
			return nil, err
		}
		return Scalar{Type: id, Text: text}, nil
	}
}

func normalize(c Capabilities, id, raw string) (string, error) {
	if c.Normalize == nil {
		return raw, nil
	}
	out, err := c.Normalize(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s %q: %v", ErrInvalidValue, id, raw, err)
	}
	return out, nil
}

// Format returns the canonical string form of v.
func (r *Registry) Format(v Value) string {
	switch val := v.(type) {
	case Scalar:
		return val.Text
	case Reference:
		return val.ID
	case Choice:
		return strconv.Itoa(val.Code)
	default:
		return ""
	}
}

// Title returns the display title of v. Values of unknown types and nil
// values have an empty title.
func (r *Registry) Title(v Value) string {
	if v == nil {
		return ""
	}
	c, ok := r.types[v.TypeID()]
	if !ok {
		return ""
	}
	if c.Title != nil {
		return c.Title(v)
	}
	switch val := v.(type) {
	case Scalar:
		return firstLine(val.Text)
	case Choice:
		label, _ := optionLabel(c.Options(), val.Code)
		return label
	default:
		return ""
	}
}

func optionLabel(opts []Option, code int) (string, bool) {
	for _, o := range opts {
		if o.Code == code {
			return o.Label, true
		}
	}
	return "", false
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}
