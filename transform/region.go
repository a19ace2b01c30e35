package transform

import (
	"fmt"

	"github.com/eringen/contentkit/content"
	"github.com/eringen/contentkit/edit"
	"github.com/eringen/contentkit/field"
	"github.com/eringen/contentkit/schema"
)

// LoadRegion converts a stored region value into its edit form. A nil
// value loads as one empty item for plain regions and no items for
// collections.
func (t *Transformer) LoadRegion(v content.RegionValue, def *schema.RegionDef) (*edit.Region, error) {
	path := "regions." + def.ID

	// Plain regions are handled as one-item collections from here on.
	var groups []content.FieldGroup
	switch rv := v.(type) {
	case nil:
		if !def.Collection {
			groups = []content.FieldGroup{nil}
		}
	case content.Single:
		if def.Collection {
			return nil, newError(ErrShapeMismatch, path, "collection region holds a single value")
		}
		groups = []content.FieldGroup{rv.Group}
	case content.Collection:
		if !def.Collection {
			return nil, newError(ErrShapeMismatch, path, "single region holds a collection")
		}
		groups = rv.Items
	default:
		return nil, newError(ErrShapeMismatch, path, "unsupported region value %T", v)
	}

	out := &edit.Region{
		ID:          def.ID,
		Title:       def.Title,
		Collection:  def.Collection,
		Placeholder: def.PlaceholderTitle(),
		Items:       make([]*edit.RegionItem, 0, len(groups)),
	}
	for i, g := range groups {
		item, err := t.loadItem(g, def, itemPath(path, def, i))
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func (t *Transformer) loadItem(g content.FieldGroup, def *schema.RegionDef, path string) (*edit.RegionItem, error) {
	values, err := groupValues(g, def, path)
	if err != nil {
		return nil, err
	}
	fields, coerced, err := t.decorateAll(def.Fields, values, path)
	if err != nil {
		return nil, err
	}
	item := &edit.RegionItem{Title: def.PlaceholderTitle(), Fields: fields}
	if src, ok := def.TitleSource(); ok {
		for _, f := range fields {
			f.Meta.NotifyOnChange = f.ID == src.ID
		}
		if title := t.fields.Title(coerced[src.ID]); title != "" {
			item.Title = title
		}
	}
	return item, nil
}

// groupValues flattens a field group into a map keyed by field id.
func groupValues(g content.FieldGroup, def *schema.RegionDef, path string) (map[string]field.Value, error) {
	switch fg := g.(type) {
	case nil:
		return nil, nil
	case content.Bare:
		if !def.Bare() {
			return nil, newError(ErrShapeMismatch, path, "region with %d fields holds a bare value", len(def.Fields))
		}
		return map[string]field.Value{def.Fields[0].ID: fg.Value}, nil
	case content.Keyed:
		if def.Bare() {
			return nil, newError(ErrShapeMismatch, path, "single-field region holds a keyed group")
		}
		return fg.Values, nil
	default:
		return nil, newError(ErrShapeMismatch, path, "unsupported field group %T", g)
	}
}

// SaveRegion rebuilds a stored region value from its submitted edit form.
// Collection items keep their submitted order.
func (t *Transformer) SaveRegion(r *edit.Region, def *schema.RegionDef) (content.RegionValue, error) {
	path := "regions." + def.ID
	if r == nil {
		if def.Collection {
			return content.Collection{}, nil
		}
		return nil, newError(ErrMissingRequiredItem, path, "region was not submitted")
	}
	if r.Collection != def.Collection {
		if def.Collection {
			return nil, newError(ErrShapeMismatch, path, "collection region submitted as a single item")
		}
		return nil, newError(ErrShapeMismatch, path, "single region submitted as a collection")
	}

	if !def.Collection {
		switch n := len(r.Items); {
		case n == 0:
			return nil, newError(ErrMissingRequiredItem, path, "single region submitted without an item")
		case n > 1:
			return nil, newError(ErrShapeMismatch, path, "single region submitted with %d items", n)
		}
		g, err := t.saveItem(r.Items[0], def, path)
		if err != nil {
			return nil, err
		}
		return content.Single{Group: g}, nil
	}

	var items []content.FieldGroup
	for i, it := range r.Items {
		g, err := t.saveItem(it, def, itemPath(path, def, i))
		if err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return content.Collection{Items: items}, nil
}

// saveItem reads every declared field by id. Fields missing from the
// submission resolve to their zero value; undeclared ones are ignored.
func (t *Transformer) saveItem(it *edit.RegionItem, def *schema.RegionDef, path string) (content.FieldGroup, error) {
	lookup := func(id string) *edit.Field {
		if it == nil {
			return nil
		}
		return it.Field(id)
	}
	if def.Bare() {
		fd := def.Fields[0]
		v, err := t.readField(fd, lookup(fd.ID), path+"."+fd.ID)
		if err != nil {
			return nil, err
		}
		return content.Bare{Value: v}, nil
	}
	values := make(map[string]field.Value, len(def.Fields))
	for _, fd := range def.Fields {
		v, err := t.readField(fd, lookup(fd.ID), path+"."+fd.ID)
		if err != nil {
			return nil, err
		}
		values[fd.ID] = v
	}
	return content.Keyed{Values: values}, nil
}

func itemPath(path string, def *schema.RegionDef, i int) string {
	if !def.Collection {
		return path
	}
	return fmt.Sprintf("%s[%d]", path, i)
}
