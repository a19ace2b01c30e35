// Package content is the runtime model of stored content: entities whose
// regions and block sections follow a schema.Type.
package content

import (
	"time"

	"github.com/eringen/contentkit/field"
)

// Taxonomy is a category or tag label.
type Taxonomy string

// Entity is one stored content item.
type Entity struct {
	ID           string
	Type         string
	Title        string
	Slug         string
	Excerpt      string
	PrimaryImage string
	Category     *Taxonomy
	Tags         []Taxonomy
	Regions      map[string]RegionValue
	// Blocks holds the ordered top-level blocks of each section.
	Blocks    map[string][]Block
	Created   time.Time
	Modified  time.Time
	Published *time.Time
}

// RegionValue is the stored value of a region: Single for plain regions,
// Collection for repeatable ones.
type RegionValue interface {
	isRegionValue()
}

// Single is the value of a non-collection region.
type Single struct {
	Group FieldGroup
}

// Collection is the value of a collection region. Item order is significant.
type Collection struct {
	Items []FieldGroup
}

func (Single) isRegionValue()     {}
func (Collection) isRegionValue() {}

// FieldGroup is one occurrence of a region's fields: Bare when the region
// declares one field, Keyed when it declares several.
type FieldGroup interface {
	isFieldGroup()
}

// Bare is the field group of a single-field region.
type Bare struct {
	Value field.Value
}

// Keyed is the field group of a multi-field region, keyed by field id.
type Keyed struct {
	Values map[string]field.Value
}

func (Bare) isFieldGroup()  {}
func (Keyed) isFieldGroup() {}

// Block is a stored block: Leaf or Group.
type Block interface {
	BlockID() string
	BlockType() string
	isBlock()
}

// Leaf is a block without children.
type Leaf struct {
	ID     string
	Type   string
	Fields map[string]field.Value
}

// Group is a container block with its own fields and ordered children.
type Group struct {
	ID       string
	Type     string
	Fields   map[string]field.Value
	Children []Block
}

func (b Leaf) BlockID() string    { return b.ID }
func (b Leaf) BlockType() string  { return b.Type }
func (b Group) BlockID() string   { return b.ID }
func (b Group) BlockType() string { return b.Type }

func (Leaf) isBlock()  {}
func (Group) isBlock() {}

// State is the editorial state of an entity as shown to editors.
type State string

const (
	StateNew         State = "new"
	StateDraft       State = "draft"
	StatePublished   State = "published"
	StateUnpublished State = "unpublished"
)

// IsPublished reports whether the entity has a publish date.
func (e *Entity) IsPublished() bool {
	return e.Published != nil
}

// TagLabels returns the tags as plain strings.
func (e *Entity) TagLabels() []string {
	if len(e.Tags) == 0 {
		return nil
	}
	out := make([]string, len(e.Tags))
	for i, t := range e.Tags {
		out[i] = string(t)
	}
	return out
}
