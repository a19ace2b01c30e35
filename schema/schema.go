// Package schema holds the declarative content type model: ordered regions
// of fields, ordered block sections and feature flags, plus the read-only
// registry that resolves type and group ids at runtime.
package schema

import "github.com/eringen/contentkit/field"

// DefaultSection is the legacy block section id. It is accepted for every
// content type whether or not the type declares it.
const DefaultSection = "default"

// DefaultPlaceholder is shown as an item title when a region item has no
// title and the region configures no placeholder.
const DefaultPlaceholder = "..."

// Features toggles the optional parts of a content type.
type Features struct {
	UseBlocks       bool `yaml:"useBlocks" json:"useBlocks"`
	UseCategory     bool `yaml:"useCategory" json:"useCategory"`
	UseTags         bool `yaml:"useTags" json:"useTags"`
	UsePrimaryImage bool `yaml:"usePrimaryImage" json:"usePrimaryImage"`
	UseExcerpt      bool `yaml:"useExcerpt" json:"useExcerpt"`
	UseTranslations bool `yaml:"useTranslations" json:"useTranslations"`
}

// RegionDef declares a region: one field group, or a repeatable collection
// of them when Collection is set.
type RegionDef struct {
	ID          string      `yaml:"id" json:"id"`
	Title       string      `yaml:"title" json:"title"`
	Placeholder string      `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Collection  bool        `yaml:"collection,omitempty" json:"collection,omitempty"`
	TitleField  string      `yaml:"titleField,omitempty" json:"titleField,omitempty"`
	Fields      []field.Def `yaml:"fields" json:"fields"`
}

// Bare reports whether the region holds exactly one field. Bare regions
// store that field's value directly instead of a keyed map.
func (r *RegionDef) Bare() bool {
	return len(r.Fields) == 1
}

// TitleSource returns the field whose value titles a region item: the sole
// field of a bare region, or the configured title field of a keyed one.
func (r *RegionDef) TitleSource() (field.Def, bool) {
	if r.Bare() {
		return r.Fields[0], true
	}
	if r.TitleField == "" {
		return field.Def{}, false
	}
	return r.Field(r.TitleField)
}

// Field returns the declared field with the given id.
func (r *RegionDef) Field(id string) (field.Def, bool) {
	for _, f := range r.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return field.Def{}, false
}

// PlaceholderTitle is the title shown for items whose title field is blank.
func (r *RegionDef) PlaceholderTitle() string {
	if r.Placeholder != "" {
		return r.Placeholder
	}
	return DefaultPlaceholder
}

// SectionDef declares a named, ordered list of top-level blocks.
type SectionDef struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
}

// EditorDef declares a custom editor panel. The engine passes it through
// to the UI untouched.
type EditorDef struct {
	ID        string         `yaml:"id" json:"id"`
	Title     string         `yaml:"title" json:"title"`
	Component string         `yaml:"component" json:"component"`
	Icon      string         `yaml:"icon,omitempty" json:"icon,omitempty"`
	Settings  map[string]any `yaml:"settings,omitempty" json:"settings,omitempty"`
}

// Type is a content type.
type Type struct {
	ID    string `yaml:"id" json:"id"`
	Group string `yaml:"group" json:"group"`
	Title string `yaml:"title" json:"title"`
	// Routed types (pages, posts) have public URLs and a publish date.
	Routed   bool         `yaml:"routed,omitempty" json:"routed,omitempty"`
	Regions  []RegionDef  `yaml:"regions" json:"regions"`
	Sections []SectionDef `yaml:"sections,omitempty" json:"sections,omitempty"`
	Features Features     `yaml:"features" json:"features"`
	Editors  []EditorDef  `yaml:"editors,omitempty" json:"editors,omitempty"`
}

// Region returns the region definition with the given id.
func (t *Type) Region(id string) (*RegionDef, bool) {
	for i := range t.Regions {
		if t.Regions[i].ID == id {
			return &t.Regions[i], true
		}
	}
	return nil, false
}

// Section resolves a section id. The legacy default section always
// resolves, declared or not.
func (t *Type) Section(id string) (SectionDef, bool) {
	for _, s := range t.Sections {
		if s.ID == id {
			return s, true
		}
	}
	if id == DefaultSection {
		return SectionDef{ID: DefaultSection, Title: "Content"}, true
	}
	return SectionDef{}, false
}

// DeclaresSection reports whether id is explicitly declared on t.
func (t *Type) DeclaresSection(id string) bool {
	for _, s := range t.Sections {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Group collects content types that share taxonomies.
type Group struct {
	ID    string   `yaml:"id" json:"id"`
	Title string   `yaml:"title" json:"title"`
	Types []string `yaml:"-" json:"types"`
}
