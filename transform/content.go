package transform

import (
	"strings"

	"github.com/eringen/contentkit/content"
	"github.com/eringen/contentkit/edit"
	"github.com/eringen/contentkit/field"
	"github.com/eringen/contentkit/schema"
)

// Workflow reports the approval status of an entity. The transformer reads
// it and never drives it.
type Workflow interface {
	CanAdvance(e content.Entity, actor string) bool
	CurrentStepName(e content.Entity) string
}

// LoadOptions carries the per-request inputs of Load.
type LoadOptions struct {
	// Draft marks the entity as fetched from the draft store.
	Draft bool
	// Categories and Tags are the labels already in use in the type's
	// group. They are attached only when the type enables the feature.
	Categories []string
	Tags       []string
	Workflow   Workflow
	Actor      string
}

// Empty builds a zero-valued entity of typeID: one empty field group per
// plain region, an empty list per collection and no blocks.
func (t *Transformer) Empty(typeID string) (content.Entity, error) {
	st, ok := t.schemas.ResolveType(typeID)
	if !ok {
		return content.Entity{}, newError(ErrUnknownType, "type", "content type %q", typeID)
	}
	e := content.Entity{
		Type:    st.ID,
		Regions: make(map[string]content.RegionValue, len(st.Regions)),
	}
	for i := range st.Regions {
		def := &st.Regions[i]
		if def.Collection {
			e.Regions[def.ID] = content.Collection{}
			continue
		}
		g, err := t.emptyGroup(def)
		if err != nil {
			return content.Entity{}, err
		}
		e.Regions[def.ID] = content.Single{Group: g}
	}
	return e, nil
}

func (t *Transformer) emptyGroup(def *schema.RegionDef) (content.FieldGroup, error) {
	path := "regions." + def.ID
	values := make(map[string]field.Value, len(def.Fields))
	for _, fd := range def.Fields {
		v, err := t.coerce(fd, nil, path+"."+fd.ID)
		if err != nil {
			return nil, err
		}
		values[fd.ID] = v
	}
	if def.Bare() {
		return content.Bare{Value: values[def.Fields[0].ID]}, nil
	}
	return content.Keyed{Values: values}, nil
}

// CreateEmpty loads a fresh entity of typeID. The resulting tree is in
// state new.
func (t *Transformer) CreateEmpty(typeID string, opts LoadOptions) (*edit.Tree, error) {
	e, err := t.Empty(typeID)
	if err != nil {
		return nil, err
	}
	return t.Load(e, opts)
}

// Load builds the edit tree of e. Regions follow schema order, not storage
// order. Declared sections are always present; the legacy default section
// is added when it holds blocks and the type does not declare it.
func (t *Transformer) Load(e content.Entity, opts LoadOptions) (*edit.Tree, error) {
	st, ok := t.schemas.ResolveType(e.Type)
	if !ok {
		return nil, newError(ErrUnknownType, "type", "content type %q", e.Type)
	}
	for id := range e.Blocks {
		if _, ok := st.Section(id); !ok {
			return nil, newError(ErrUnknownType, "sections."+id, "section %q is not declared on %q", id, st.ID)
		}
	}

	tree := &edit.Tree{
		ID:       e.ID,
		Type:     st.ID,
		Group:    st.Group,
		Title:    e.Title,
		Slug:     e.Slug,
		State:    DeriveState(e, st.Routed, opts.Draft),
		Regions:  make([]*edit.Region, 0, len(st.Regions)),
		Editors:  st.Editors,
		Features: st.Features,
	}

	for i := range st.Regions {
		def := &st.Regions[i]
		r, err := t.LoadRegion(e.Regions[def.ID], def)
		if err != nil {
			return nil, err
		}
		tree.Regions = append(tree.Regions, r)
	}

	if st.Features.UseBlocks {
		sections := st.Sections
		if !st.DeclaresSection(schema.DefaultSection) && len(e.Blocks[schema.DefaultSection]) > 0 {
			def, _ := st.Section(schema.DefaultSection)
			sections = append(append([]schema.SectionDef(nil), sections...), def)
		}
		for _, sec := range sections {
			s, err := t.LoadSection(e.Blocks[sec.ID], sec)
			if err != nil {
				return nil, err
			}
			tree.Sections = append(tree.Sections, s)
		}
	}

	t.attachFeatures(tree, e, st, opts)

	if opts.Workflow != nil {
		tree.Workflow = &edit.Workflow{
			Step:       opts.Workflow.CurrentStepName(e),
			CanAdvance: opts.Workflow.CanAdvance(e, opts.Actor),
		}
	}
	return tree, nil
}

func (t *Transformer) attachFeatures(tree *edit.Tree, e content.Entity, st *schema.Type, opts LoadOptions) {
	f := st.Features
	if f.UseExcerpt {
		excerpt := e.Excerpt
		tree.Excerpt = &excerpt
	}
	if f.UsePrimaryImage {
		img := e.PrimaryImage
		tree.PrimaryImage = &img
	}
	if f.UseCategory {
		if e.Category != nil {
			c := string(*e.Category)
			tree.Category = &c
		}
		if len(opts.Categories) > 0 {
			tree.Taxonomy = &edit.Taxonomy{Categories: opts.Categories}
		}
	}
	if f.UseTags {
		tree.Tags = e.TagLabels()
		if len(opts.Tags) > 0 {
			if tree.Taxonomy == nil {
				tree.Taxonomy = &edit.Taxonomy{}
			}
			tree.Taxonomy.Tags = opts.Tags
		}
	}
}

// Save rebuilds an entity from a submitted tree. base is the stored entity
// the tree was loaded from, or the zero Entity for new content; its
// identity and timestamps are kept. Parts of the entity that the type's
// features disable are carried over from base unchanged.
func (t *Transformer) Save(tree *edit.Tree, base content.Entity) (content.Entity, error) {
	if tree == nil {
		return content.Entity{}, newError(ErrShapeMismatch, "", "no tree submitted")
	}
	st, ok := t.schemas.ResolveType(tree.Type)
	if !ok {
		return content.Entity{}, newError(ErrStaleSchema, "type", "content type %q is no longer registered", tree.Type)
	}
	if base.Type != "" && base.Type != st.ID {
		return content.Entity{}, newError(ErrShapeMismatch, "type", "tree of type %q submitted for %q", st.ID, base.Type)
	}
	if base.ID != "" && tree.ID != "" && tree.ID != base.ID {
		return content.Entity{}, newError(ErrShapeMismatch, "id", "tree %q submitted for entity %q", tree.ID, base.ID)
	}

	out := base
	out.Type = st.ID
	if out.ID == "" {
		out.ID = tree.ID
	}
	out.Title = edited(tree.Title, base.Title)
	out.Slug = edited(tree.Slug, base.Slug)

	regions := make(map[string]content.RegionValue, len(st.Regions))
	for i := range st.Regions {
		def := &st.Regions[i]
		v, err := t.SaveRegion(tree.Region(def.ID), def)
		if err != nil {
			return content.Entity{}, err
		}
		regions[def.ID] = v
	}
	out.Regions = regions

	if st.Features.UseBlocks {
		blocks, err := t.saveSections(tree, st)
		if err != nil {
			return content.Entity{}, err
		}
		out.Blocks = blocks
	}

	f := st.Features
	if f.UseExcerpt && tree.Excerpt != nil {
		out.Excerpt = edited(*tree.Excerpt, base.Excerpt)
	}
	if f.UsePrimaryImage && tree.PrimaryImage != nil {
		out.PrimaryImage = edited(*tree.PrimaryImage, base.PrimaryImage)
	}
	if f.UseCategory {
		out.Category = nil
		if tree.Category != nil {
			if c := strings.TrimSpace(*tree.Category); c != "" {
				tc := content.Taxonomy(c)
				out.Category = &tc
			}
		}
	}
	if f.UseTags {
		out.Tags = normalizeTags(tree.Tags)
	}
	return out, nil
}

// edited returns the submitted text trimmed, or the stored text as is when
// the submission left it unchanged.
func edited(submitted, stored string) string {
	if submitted == stored {
		return stored
	}
	return strings.TrimSpace(submitted)
}

func (t *Transformer) saveSections(tree *edit.Tree, st *schema.Type) (map[string][]content.Block, error) {
	var blocks map[string][]content.Block
	seen := make(map[string]struct{}, len(tree.Sections))
	for i, sec := range tree.Sections {
		if sec == nil {
			return nil, newError(ErrShapeMismatch, "sections", "empty section at %d", i)
		}
		if _, dup := seen[sec.ID]; dup {
			return nil, newError(ErrShapeMismatch, "sections."+sec.ID, "section submitted twice")
		}
		seen[sec.ID] = struct{}{}
		if _, ok := st.Section(sec.ID); !ok {
			return nil, newError(ErrStaleSchema, "sections."+sec.ID, "section %q is not declared on %q", sec.ID, st.ID)
		}
		list, err := t.SaveSection(sec)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			continue
		}
		if blocks == nil {
			blocks = make(map[string][]content.Block)
		}
		blocks[sec.ID] = list
	}
	return blocks, nil
}

// normalizeTags trims tags and drops blanks and repeats, keeping the first
// occurrence order.
func normalizeTags(in []string) []content.Taxonomy {
	var out []content.Taxonomy
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, content.Taxonomy(s))
	}
	return out
}
