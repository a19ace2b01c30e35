package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFrozen is returned by Register once the registry has been frozen.
var ErrFrozen = errors.New("schema: registry is frozen")

// Registry resolves content types and groups. It is built once at startup
// and read-only after Freeze.
type Registry struct {
	types  map[string]*Type
	groups map[string]*Group
	order  []string
	frozen bool
}

// NewRegistry returns an empty, writable registry.
func NewRegistry() *Registry {
	return &Registry{
		types:  make(map[string]*Type),
		groups: make(map[string]*Group),
	}
}

// RegisterGroup adds a group.
func (r *Registry) RegisterGroup(g Group) error {
	if r.frozen {
		return ErrFrozen
	}
	g.ID = strings.TrimSpace(g.ID)
	if g.ID == "" {
		return fmt.Errorf("schema: empty group id")
	}
	if _, ok := r.groups[g.ID]; ok {
		return fmt.Errorf("schema: group %q already registered", g.ID)
	}
	if g.Title == "" {
		g.Title = g.ID
	}
	g.Types = nil
	r.groups[g.ID] = &g
	return nil
}

// Register adds a content type, creating its group when it is not yet
// known. Types keep their registration order.
func (r *Registry) Register(t Type) error {
	if r.frozen {
		return ErrFrozen
	}
	t.ID = strings.TrimSpace(t.ID)
	if t.ID == "" {
		return fmt.Errorf("schema: empty type id")
	}
	if _, ok := r.types[t.ID]; ok {
		return fmt.Errorf("schema: type %q already registered", t.ID)
	}
	if t.Group == "" {
		t.Group = "default"
	}
	g, ok := r.groups[t.Group]
	if !ok {
		if err := r.RegisterGroup(Group{ID: t.Group}); err != nil {
			return err
		}
		g = r.groups[t.Group]
	}
	g.Types = append(g.Types, t.ID)
	r.types[t.ID] = &t
	r.order = append(r.order, t.ID)
	return nil
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.frozen = true
}

// ResolveType returns the content type registered under id.
func (r *Registry) ResolveType(id string) (*Type, bool) {
	t, ok := r.types[id]
	return t, ok
}

// ResolveGroup returns the group registered under id.
func (r *Registry) ResolveGroup(id string) (*Group, bool) {
	g, ok := r.groups[id]
	return g, ok
}

// Types returns all content types in registration order.
func (r *Registry) Types() []*Type {
	out := make([]*Type, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.types[id])
	}
	return out
}
