// Package block implements the block type registry. A block type is either
// a leaf or a group (a container of further blocks), and is rendered either
// by a bespoke UI component (specific) or generically from its field list.
package block

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/eringen/contentkit/field"
)

var (
	// ErrUnknownType is returned when a block type id is not registered.
	ErrUnknownType = errors.New("block: unknown block type")
	// ErrFrozen is returned by Register once the registry has been frozen.
	ErrFrozen = errors.New("block: registry is frozen")
)

// Kind tells leaves from groups.
type Kind int

const (
	Leaf Kind = iota
	Group
)

func (k Kind) String() string {
	if k == Group {
		return "group"
	}
	return "leaf"
}

// Rendering tells blocks with a bespoke UI component from blocks whose
// fields are rendered generically.
type Rendering int

const (
	Specific Rendering = iota
	Generic
)

func (r Rendering) String() string {
	if r == Generic {
		return "generic"
	}
	return "specific"
}

// Titler answers the display title of a field value. *field.Registry
// implements it.
type Titler interface {
	Title(v field.Value) string
}

// Type describes one registered block type.
type Type struct {
	ID        string
	Title     string
	Category  string
	Kind      Kind
	Rendering Rendering
	// Component is the UI component of specific blocks.
	Component string
	// Fields are the block's declared properties, in display order. For
	// groups these are the group's own fields.
	Fields     []field.Def
	TitleField string
	// Children whitelists child block type ids of a group. Empty allows
	// any leaf.
	Children          []string
	AllowNestedGroups bool
	Icon              string
	Width             int
	// TitleFunc overrides title extraction over the block's field values.
	TitleFunc func(values map[string]field.Value, t Titler) string
}

// Field returns the declared field with the given id.
func (t *Type) Field(id string) (field.Def, bool) {
	for _, f := range t.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return field.Def{}, false
}

// AllowsChild reports whether child may be nested directly inside t.
// Groups never nest inside groups unless t opts in, and a non-empty
// whitelist restricts the legal child type ids.
func (t *Type) AllowsChild(child *Type) bool {
	if t.Kind != Group {
		return false
	}
	if child.Kind == Group && !t.AllowNestedGroups {
		return false
	}
	if len(t.Children) == 0 {
		return true
	}
	for _, id := range t.Children {
		if id == child.ID {
			return true
		}
	}
	return false
}

// DisplayTitle derives the block's title from its field values: TitleFunc
// when set, otherwise the title of the configured title field, otherwise
// the first non-empty field title in declaration order.
func (t *Type) DisplayTitle(values map[string]field.Value, titler Titler) string {
	if t.TitleFunc != nil {
		return t.TitleFunc(values, titler)
	}
	if t.TitleField != "" {
		return titler.Title(values[t.TitleField])
	}
	for _, f := range t.Fields {
		if s := titler.Title(values[f.ID]); s != "" {
			return s
		}
	}
	return ""
}

// Registry maps block type ids to their definitions. Like the field
// registry it is written once at startup and read-only after Freeze.
type Registry struct {
	types  map[string]*Type
	frozen bool
}

// NewRegistry returns an empty, writable registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Type)}
}

// Register adds a block type.
func (r *Registry) Register(t Type) error {
	if r.frozen {
		return ErrFrozen
	}
	t.ID = strings.TrimSpace(t.ID)
	if t.ID == "" {
		return fmt.Errorf("block: empty type id")
	}
	if _, ok := r.types[t.ID]; ok {
		return fmt.Errorf("block: type %q already registered", t.ID)
	}
	fieldIDs := make(map[string]struct{}, len(t.Fields))
	for _, f := range t.Fields {
		if _, dup := fieldIDs[f.ID]; dup || f.ID == "" {
			return fmt.Errorf("block: type %q: invalid or duplicate field id %q", t.ID, f.ID)
		}
		fieldIDs[f.ID] = struct{}{}
	}
	if t.Kind == Leaf && (len(t.Children) > 0 || t.AllowNestedGroups) {
		return fmt.Errorf("block: leaf type %q declares children", t.ID)
	}
	if t.TitleField != "" {
		if _, ok := t.Field(t.TitleField); !ok {
			return fmt.Errorf("block: type %q title field %q is not declared", t.ID, t.TitleField)
		}
	}
	if t.Title == "" {
		t.Title = t.ID
	}
	r.types[t.ID] = &t
	return nil
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Resolve returns the block type registered under id.
func (r *Registry) Resolve(id string) (*Type, bool) {
	t, ok := r.types[id]
	return t, ok
}

// Types returns every registered block type ordered by category, then id.
func (r *Registry) Types() []*Type {
	out := make([]*Type, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Validate checks that every declared field type resolves in fields and
// every whitelisted child type is registered.
func (r *Registry) Validate(fields *field.Registry) error {
	for _, t := range r.Types() {
		for _, f := range t.Fields {
			if _, ok := fields.Resolve(f.Type); !ok {
				return fmt.Errorf("block %q field %q: %w: %q", t.ID, f.ID, field.ErrUnknownType, f.Type)
			}
		}
		for _, child := range t.Children {
			if _, ok := r.types[child]; !ok {
				return fmt.Errorf("block %q child: %w: %q", t.ID, ErrUnknownType, child)
			}
		}
	}
	return nil
}
