package transform

import (
	"fmt"

	"github.com/eringen/contentkit/block"
	"github.com/eringen/contentkit/content"
	"github.com/eringen/contentkit/edit"
	"github.com/eringen/contentkit/field"
	"github.com/eringen/contentkit/schema"
)

// LoadSection converts the ordered blocks of one section into their edit
// form.
func (t *Transformer) LoadSection(blocks []content.Block, sec schema.SectionDef) (*edit.Section, error) {
	path := "sections." + sec.ID
	out := &edit.Section{
		ID:     sec.ID,
		Title:  sec.Title,
		Blocks: make([]*edit.Block, 0, len(blocks)),
	}
	for i, b := range blocks {
		eb, err := t.loadBlock(b, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out.Blocks = append(out.Blocks, eb)
	}
	return out, nil
}

func (t *Transformer) loadBlock(b content.Block, path string) (*edit.Block, error) {
	if b == nil {
		return nil, newError(ErrShapeMismatch, path, "empty block")
	}
	bt, ok := t.blocks.Resolve(b.BlockType())
	if !ok {
		return nil, newError(ErrUnknownType, path, "block type %q", b.BlockType())
	}
	switch blk := b.(type) {
	case content.Leaf:
		if bt.Kind != block.Leaf {
			return nil, newError(ErrShapeMismatch, path, "group type %q stored as a leaf", bt.ID)
		}
		return t.loadLeaf(blk, bt, path)
	case content.Group:
		if bt.Kind != block.Group {
			return nil, newError(ErrShapeMismatch, path, "leaf type %q stored as a group", bt.ID)
		}
		return t.loadGroup(blk, bt, path)
	default:
		return nil, newError(ErrShapeMismatch, path, "unsupported block %T", b)
	}
}

func (t *Transformer) loadLeaf(b content.Leaf, bt *block.Type, path string) (*edit.Block, error) {
	fields, values, err := t.decorateAll(bt.Fields, b.Fields, path)
	if err != nil {
		return nil, err
	}
	out := newEditBlock(b.ID, bt)
	out.Title = bt.DisplayTitle(values, t.fields)
	switch bt.Rendering {
	case block.Generic:
		out.Kind = edit.BlockGeneric
		markGenericNotify(fields, bt)
		out.Fields = fields
	case block.Specific:
		out.Kind = edit.BlockItem
		out.Model = make(map[string]*edit.Field, len(fields))
		for _, f := range fields {
			out.Model[f.ID] = f
		}
	}
	return out, nil
}

func (t *Transformer) loadGroup(b content.Group, bt *block.Type, path string) (*edit.Block, error) {
	fields, values, err := t.decorateAll(bt.Fields, b.Fields, path)
	if err != nil {
		return nil, err
	}
	markGenericNotify(fields, bt)

	out := newEditBlock(b.ID, bt)
	out.Kind = edit.BlockGroup
	out.Title = bt.DisplayTitle(values, t.fields)
	out.Fields = fields
	out.Items = make([]*edit.Block, 0, len(b.Children))
	for i, child := range b.Children {
		cpath := fmt.Sprintf("%s.items[%d]", path, i)
		if child == nil {
			return nil, newError(ErrShapeMismatch, cpath, "empty block")
		}
		if err := t.checkChild(bt, child.BlockType(), cpath, ErrUnknownType); err != nil {
			return nil, err
		}
		eb, err := t.loadBlock(child, cpath)
		if err != nil {
			return nil, err
		}
		eb.Active = i == 0
		out.Items = append(out.Items, eb)
	}
	return out, nil
}

// markGenericNotify flags the field whose edits change the block title: the
// only field of a single-field block, otherwise the configured title field.
func markGenericNotify(fields []*edit.Field, bt *block.Type) {
	if len(fields) == 1 {
		fields[0].Meta.NotifyOnChange = true
		return
	}
	for _, f := range fields {
		f.Meta.NotifyOnChange = bt.TitleField != "" && f.ID == bt.TitleField
	}
}

func newEditBlock(id string, bt *block.Type) *edit.Block {
	return &edit.Block{
		ID:   id,
		Type: bt.ID,
		Meta: edit.BlockMeta{
			Label:     bt.Title,
			Category:  bt.Category,
			Component: bt.Component,
			Icon:      bt.Icon,
			Width:     bt.Width,
			Children:  bt.Children,
		},
	}
}

// SaveSection rebuilds the ordered blocks of a submitted section. Blocks
// without an id are new and receive one.
func (t *Transformer) SaveSection(sec *edit.Section) ([]content.Block, error) {
	path := "sections." + sec.ID
	out := make([]content.Block, 0, len(sec.Blocks))
	for i, eb := range sec.Blocks {
		b, err := t.saveBlock(eb, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (t *Transformer) saveBlock(eb *edit.Block, path string) (content.Block, error) {
	if eb == nil {
		return nil, newError(ErrShapeMismatch, path, "empty block")
	}
	bt, ok := t.blocks.Resolve(eb.Type)
	if !ok {
		return nil, newError(ErrStaleSchema, path, "block type %q is no longer registered", eb.Type)
	}
	values, err := t.readBlockFields(eb, bt, path)
	if err != nil {
		return nil, err
	}
	id := eb.ID
	if id == "" {
		id = t.newID()
	}

	if bt.Kind == block.Leaf {
		if eb.Kind == edit.BlockGroup || len(eb.Items) > 0 {
			return nil, newError(ErrShapeMismatch, path, "leaf type %q submitted with children", bt.ID)
		}
		return content.Leaf{ID: id, Type: bt.ID, Fields: values}, nil
	}

	if eb.Kind != "" && eb.Kind != edit.BlockGroup {
		return nil, newError(ErrShapeMismatch, path, "group type %q submitted as %s", bt.ID, eb.Kind)
	}
	var children []content.Block
	for i, item := range eb.Items {
		cpath := fmt.Sprintf("%s.items[%d]", path, i)
		if item == nil {
			return nil, newError(ErrShapeMismatch, cpath, "empty block")
		}
		if err := t.checkChild(bt, item.Type, cpath, ErrStaleSchema); err != nil {
			return nil, err
		}
		child, err := t.saveBlock(item, cpath)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return content.Group{ID: id, Type: bt.ID, Fields: values, Children: children}, nil
}

// checkChild resolves a child type id and checks it against the parent's
// whitelist. missing is the error kind used when the id does not resolve.
func (t *Transformer) checkChild(parent *block.Type, childType, path string, missing error) error {
	ct, ok := t.blocks.Resolve(childType)
	if !ok {
		return newError(missing, path, "block type %q", childType)
	}
	if !parent.AllowsChild(ct) {
		return newError(ErrDisallowedChild, path, "%q may not contain %q", parent.ID, ct.ID)
	}
	return nil
}

func (t *Transformer) readBlockFields(eb *edit.Block, bt *block.Type, path string) (map[string]field.Value, error) {
	values := make(map[string]field.Value, len(bt.Fields))
	for _, fd := range bt.Fields {
		v, err := t.readField(fd, eb.Field(fd.ID), path+"."+fd.ID)
		if err != nil {
			return nil, err
		}
		values[fd.ID] = v
	}
	return values, nil
}
