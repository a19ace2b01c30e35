// Package transform maps stored content entities to edit trees and back.
//
// Load walks a content.Entity against its schema.Type and produces an
// edit.Tree in which every field is decorated with UI metadata and every
// region item and block carries a display title. Save walks a submitted
// edit.Tree and rebuilds the entity's regions and blocks. A Transformer
// holds only the frozen registries, so one value can serve any number of
// goroutines.
package transform

import (
	"github.com/google/uuid"

	"github.com/eringen/contentkit/block"
	"github.com/eringen/contentkit/edit"
	"github.com/eringen/contentkit/field"
	"github.com/eringen/contentkit/schema"
)

// Transformer converts between content entities and edit trees.
type Transformer struct {
	fields  *field.Registry
	blocks  *block.Registry
	schemas *schema.Registry
	newID   func() string
}

// New returns a Transformer over the given registries. The registries must
// not be written to afterwards.
func New(fields *field.Registry, blocks *block.Registry, schemas *schema.Registry) *Transformer {
	return &Transformer{
		fields:  fields,
		blocks:  blocks,
		schemas: schemas,
		newID:   uuid.NewString,
	}
}

// Fields returns the field type registry.
func (t *Transformer) Fields() *field.Registry { return t.fields }

// Blocks returns the block type registry.
func (t *Transformer) Blocks() *block.Registry { return t.blocks }

// Schemas returns the content type registry.
func (t *Transformer) Schemas() *schema.Registry { return t.schemas }

// decorate wraps v, coerced to fd's type, as an edit field. It also
// returns the coerced value so callers can derive titles from it.
func (t *Transformer) decorate(fd field.Def, v field.Value, path string) (*edit.Field, field.Value, error) {
	caps, ok := t.fields.Resolve(fd.Type)
	if !ok {
		return nil, nil, newError(ErrUnknownType, path, "field type %q", fd.Type)
	}
	v, err := t.coerce(fd, v, path)
	if err != nil {
		return nil, nil, err
	}
	f := &edit.Field{
		ID:        fd.ID,
		Component: caps.Component,
		Value:     t.fields.Format(v),
		Meta: edit.FieldMeta{
			Label:        fd.Title,
			Type:         fd.Type,
			Placeholder:  fd.Placeholder,
			Description:  fd.Description,
			HalfWidth:    fd.HalfWidth,
			Translatable: caps.Translatable,
			Settings:     fd.Settings,
		},
	}
	if caps.Kind == field.KindChoice {
		f.Meta.Options = caps.Options()
	}
	return f, v, nil
}

// decorateAll decorates defs in declaration order, looking values up by
// field id.
func (t *Transformer) decorateAll(defs []field.Def, values map[string]field.Value, path string) ([]*edit.Field, map[string]field.Value, error) {
	fields := make([]*edit.Field, 0, len(defs))
	coerced := make(map[string]field.Value, len(defs))
	for _, fd := range defs {
		f, v, err := t.decorate(fd, values[fd.ID], path+"."+fd.ID)
		if err != nil {
			return nil, nil, err
		}
		fields = append(fields, f)
		coerced[fd.ID] = v
	}
	return fields, coerced, nil
}

// coerce returns v as a value of fd's type. Missing values become the
// type's zero value; values stored under another type are re-parsed from
// their canonical form.
func (t *Transformer) coerce(fd field.Def, v field.Value, path string) (field.Value, error) {
	if v == nil {
		zero, err := t.fields.Zero(fd.Type)
		if err != nil {
			return nil, newError(ErrUnknownType, path, "field type %q", fd.Type)
		}
		return zero, nil
	}
	if v.TypeID() == fd.Type {
		return v, nil
	}
	out, err := t.fields.Parse(fd.Type, t.fields.Format(v))
	if err != nil {
		return nil, newError(ErrShapeMismatch, path, "stored %s value does not convert to %s", v.TypeID(), fd.Type)
	}
	return out, nil
}

// readField parses a submitted field back into a value of fd's type. A
// field the client omitted resolves to the zero value.
func (t *Transformer) readField(fd field.Def, f *edit.Field, path string) (field.Value, error) {
	if _, ok := t.fields.Resolve(fd.Type); !ok {
		return nil, newError(ErrUnknownType, path, "field type %q", fd.Type)
	}
	if f == nil {
		return t.fields.Zero(fd.Type)
	}
	v, err := t.fields.Parse(fd.Type, f.Value)
	if err != nil {
		return nil, newError(ErrInvalidValue, path, "%v", err)
	}
	return v, nil
}
