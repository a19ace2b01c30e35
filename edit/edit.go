// Package edit defines the edit tree: the decorated, JSON-shaped structure
// a generic editor UI renders and posts back for saving. Every field leaf
// carries its UI component name so the renderer can dispatch on it without
// knowing the field type.
package edit

import (
	"github.com/eringen/contentkit/content"
	"github.com/eringen/contentkit/field"
	"github.com/eringen/contentkit/schema"
)

// Tree is the edit tree of one content entity.
type Tree struct {
	ID           string             `json:"id"`
	Type         string             `json:"type"`
	Group        string             `json:"group"`
	Title        string             `json:"title"`
	Slug         string             `json:"slug,omitempty"`
	State        content.State      `json:"state"`
	Excerpt      *string            `json:"excerpt,omitempty"`
	PrimaryImage *string            `json:"primaryImage,omitempty"`
	Category     *string            `json:"category,omitempty"`
	Tags         []string           `json:"tags,omitempty"`
	Taxonomy     *Taxonomy          `json:"taxonomy,omitempty"`
	Regions      []*Region          `json:"regions"`
	Sections     []*Section         `json:"sections,omitempty"`
	Editors      []schema.EditorDef `json:"editors,omitempty"`
	Features     schema.Features    `json:"features"`
	Workflow     *Workflow          `json:"workflow,omitempty"`
}

// Taxonomy lists the category and tag labels already used in the entity's
// group, for pickers.
type Taxonomy struct {
	Categories []string `json:"categories,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// Workflow is the read-only workflow status of the entity.
type Workflow struct {
	Step       string `json:"step"`
	CanAdvance bool   `json:"canAdvance"`
}

// Region is the edit form of one region. Non-collection regions always
// hold exactly one item.
type Region struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Collection  bool          `json:"collection"`
	Placeholder string        `json:"placeholder,omitempty"`
	Items       []*RegionItem `json:"items"`
}

// RegionItem is one field group of a region.
type RegionItem struct {
	Title  string   `json:"title"`
	Fields []*Field `json:"fields"`
}

// Field finds a field of the item by id.
func (it *RegionItem) Field(id string) *Field {
	return findField(it.Fields, id)
}

// Field is a decorated field value.
type Field struct {
	ID        string    `json:"id"`
	Component string    `json:"component"`
	Value     string    `json:"value"`
	Meta      FieldMeta `json:"meta"`
}

// FieldMeta carries presentation data for a field.
type FieldMeta struct {
	Label          string         `json:"label"`
	Type           string         `json:"type"`
	Placeholder    string         `json:"placeholder,omitempty"`
	Description    string         `json:"description,omitempty"`
	HalfWidth      bool           `json:"halfWidth,omitempty"`
	Translatable   bool           `json:"translatable,omitempty"`
	NotifyOnChange bool           `json:"notifyOnChange,omitempty"`
	Options        []field.Option `json:"options,omitempty"`
	Settings       map[string]any `json:"settings,omitempty"`
}

// Section is the edit form of one block section.
type Section struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Blocks []*Block `json:"blocks"`
}

// BlockKind tells the UI how to render a block.
type BlockKind string

const (
	// BlockItem is a leaf with a bespoke component; Model is keyed by
	// declared property.
	BlockItem BlockKind = "item"
	// BlockGeneric is a leaf rendered from its ordered Fields.
	BlockGeneric BlockKind = "generic"
	// BlockGroup is a container with its own Fields and child Items.
	BlockGroup BlockKind = "group"
)

// Block is the edit form of one block.
type Block struct {
	Kind   BlockKind         `json:"kind"`
	ID     string            `json:"id"`
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Active bool              `json:"active,omitempty"`
	Meta   BlockMeta         `json:"meta"`
	Model  map[string]*Field `json:"model,omitempty"`
	Fields []*Field          `json:"fields,omitempty"`
	Items  []*Block          `json:"items,omitempty"`
}

// Field finds a field of the block by id, in Model first and then in
// Fields.
func (b *Block) Field(id string) *Field {
	if f, ok := b.Model[id]; ok && f != nil {
		return f
	}
	return findField(b.Fields, id)
}

// BlockMeta carries presentation data for a block.
type BlockMeta struct {
	Label     string   `json:"label"`
	Category  string   `json:"category"`
	Component string   `json:"component,omitempty"`
	Icon      string   `json:"icon,omitempty"`
	Width     int      `json:"width,omitempty"`
	Children  []string `json:"children,omitempty"`
}

// Region finds a region of the tree by id.
func (t *Tree) Region(id string) *Region {
	for _, r := range t.Regions {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Section finds a section of the tree by id.
func (t *Tree) Section(id string) *Section {
	for _, s := range t.Sections {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func findField(fields []*Field, id string) *Field {
	for _, f := range fields {
		if f != nil && f.ID == id {
			return f
		}
	}
	return nil
}
