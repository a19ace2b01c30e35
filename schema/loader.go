package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/eringen/contentkit/block"
	"github.com/eringen/contentkit/field"
)

// Definitions is one schema document. It may declare extra choice field
// types, block types, groups and content types.
type Definitions struct {
	Choices []ChoiceDef `yaml:"choices,omitempty" json:"choices,omitempty"`
	Blocks  []BlockDef  `yaml:"blocks,omitempty" json:"blocks,omitempty"`
	Groups  []Group     `yaml:"groups,omitempty" json:"groups,omitempty"`
	Types   []Type      `yaml:"types" json:"types"`
}

// ChoiceDef declares a choice field type with a fixed option list.
type ChoiceDef struct {
	ID        string         `yaml:"id" json:"id"`
	Component string         `yaml:"component,omitempty" json:"component,omitempty"`
	Options   []field.Option `yaml:"options" json:"options"`
}

// BlockDef declares a block type.
type BlockDef struct {
	ID                string      `yaml:"id" json:"id"`
	Title             string      `yaml:"title" json:"title"`
	Category          string      `yaml:"category" json:"category"`
	Group             bool        `yaml:"group,omitempty" json:"group,omitempty"`
	Generic           bool        `yaml:"generic,omitempty" json:"generic,omitempty"`
	Component         string      `yaml:"component,omitempty" json:"component,omitempty"`
	Fields            []field.Def `yaml:"fields" json:"fields"`
	TitleField        string      `yaml:"titleField,omitempty" json:"titleField,omitempty"`
	Children          []string    `yaml:"children,omitempty" json:"children,omitempty"`
	AllowNestedGroups bool        `yaml:"allowNestedGroups,omitempty" json:"allowNestedGroups,omitempty"`
	Icon              string      `yaml:"icon,omitempty" json:"icon,omitempty"`
	Width             int         `yaml:"width,omitempty" json:"width,omitempty"`
}

func (b BlockDef) blockType() block.Type {
	t := block.Type{
		ID:                b.ID,
		Title:             b.Title,
		Category:          b.Category,
		Component:         b.Component,
		Fields:            b.Fields,
		TitleField:        b.TitleField,
		Children:          b.Children,
		AllowNestedGroups: b.AllowNestedGroups,
		Icon:              b.Icon,
		Width:             b.Width,
	}
	if b.Group {
		t.Kind = block.Group
	}
	if b.Generic || b.Component == "" {
		t.Rendering = block.Generic
	}
	return t
}

// Format is the encoding of a schema document.
type Format int

const (
	FormatYAML Format = iota
	// FormatJSONC is JSON that may carry comments and trailing commas.
	FormatJSONC
)

// FormatFromPath picks the document format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".json", ".jsonc":
		return FormatJSONC, true
	default:
		return 0, false
	}
}

// LoadFile reads and parses one schema document.
func LoadFile(path string) (*Definitions, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, fmt.Errorf("schema: unsupported file type %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	defs, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// LoadPath loads a single schema document, or every schema document in a
// directory in file name order.
func LoadPath(path string) ([]*Definitions, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	if !info.IsDir() {
		defs, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		return []*Definitions{defs}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read dir %s: %w", path, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := FormatFromPath(e.Name()); ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	out := make([]*Definitions, 0, len(names))
	for _, name := range names {
		defs, err := LoadFile(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		out = append(out, defs)
	}
	return out, nil
}

// Parse decodes a schema document and fills in defaults.
func Parse(data []byte, format Format) (*Definitions, error) {
	var defs Definitions
	switch format {
	case FormatJSONC:
		if err := json.Unmarshal(jsonc.ToJSON(data), &defs); err != nil {
			return nil, fmt.Errorf("schema: parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &defs); err != nil {
			return nil, fmt.Errorf("schema: parse yaml: %w", err)
		}
	}
	applyDefaults(&defs)
	return &defs, nil
}

func applyDefaults(d *Definitions) {
	for i := range d.Choices {
		if d.Choices[i].Component == "" {
			d.Choices[i].Component = "Select"
		}
	}
	for i := range d.Blocks {
		b := &d.Blocks[i]
		if b.Title == "" {
			b.Title = b.ID
		}
		if b.Category == "" {
			b.Category = "general"
		}
		defaultFieldTitles(b.Fields)
	}
	for i := range d.Types {
		t := &d.Types[i]
		if t.Title == "" {
			t.Title = t.ID
		}
		for j := range t.Regions {
			r := &t.Regions[j]
			if r.Title == "" {
				r.Title = r.ID
			}
			defaultFieldTitles(r.Fields)
		}
		for j := range t.Sections {
			if t.Sections[j].Title == "" {
				t.Sections[j].Title = t.Sections[j].ID
			}
		}
	}
}

func defaultFieldTitles(fields []field.Def) {
	for i := range fields {
		if fields[i].Title == "" {
			fields[i].Title = fields[i].ID
		}
	}
}

// Build registers every document's choices and block types into the given
// registries, freezes them, and returns a frozen schema registry holding
// the documents' groups and types. Built-in field and block types must be
// registered before calling Build.
func Build(docs []*Definitions, fields *field.Registry, blocks *block.Registry) (*Registry, error) {
	for _, d := range docs {
		for _, c := range d.Choices {
			if len(c.Options) == 0 {
				return nil, fmt.Errorf("schema: choice %q has no options", c.ID)
			}
			err := fields.Register(c.ID, field.Capabilities{
				Component: c.Component,
				Kind:      field.KindChoice,
				Options:   field.StaticOptions(c.Options),
			})
			if err != nil {
				return nil, fmt.Errorf("schema: %w", err)
			}
		}
	}
	fields.Freeze()

	for _, d := range docs {
		for _, b := range d.Blocks {
			if err := blocks.Register(b.blockType()); err != nil {
				return nil, fmt.Errorf("schema: %w", err)
			}
		}
	}
	if err := blocks.Validate(fields); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	blocks.Freeze()

	reg := NewRegistry()
	for _, d := range docs {
		for _, g := range d.Groups {
			if err := reg.RegisterGroup(g); err != nil {
				return nil, err
			}
		}
	}
	for _, d := range docs {
		for _, t := range d.Types {
			if err := t.Validate(fields); err != nil {
				return nil, err
			}
			if err := reg.Register(t); err != nil {
				return nil, err
			}
		}
	}
	reg.Freeze()
	return reg, nil
}

// Validate checks region and section declarations of t against the field
// registry.
func (t *Type) Validate(fields *field.Registry) error {
	regionIDs := make(map[string]struct{}, len(t.Regions))
	for _, r := range t.Regions {
		if r.ID == "" {
			return fmt.Errorf("schema: type %q has a region without id", t.ID)
		}
		if _, dup := regionIDs[r.ID]; dup {
			return fmt.Errorf("schema: type %q declares region %q twice", t.ID, r.ID)
		}
		regionIDs[r.ID] = struct{}{}
		if len(r.Fields) == 0 {
			return fmt.Errorf("schema: type %q region %q has no fields", t.ID, r.ID)
		}
		fieldIDs := make(map[string]struct{}, len(r.Fields))
		for _, f := range r.Fields {
			if _, dup := fieldIDs[f.ID]; dup || f.ID == "" {
				return fmt.Errorf("schema: type %q region %q: invalid or duplicate field id %q", t.ID, r.ID, f.ID)
			}
			fieldIDs[f.ID] = struct{}{}
			if _, ok := fields.Resolve(f.Type); !ok {
				return fmt.Errorf("schema: type %q region %q field %q: %w: %q", t.ID, r.ID, f.ID, field.ErrUnknownType, f.Type)
			}
		}
		if r.TitleField != "" {
			if _, ok := fieldIDs[r.TitleField]; !ok {
				return fmt.Errorf("schema: type %q region %q: title field %q is not declared", t.ID, r.ID, r.TitleField)
			}
		}
	}
	sectionIDs := make(map[string]struct{}, len(t.Sections))
	for _, s := range t.Sections {
		if _, dup := sectionIDs[s.ID]; dup || s.ID == "" {
			return fmt.Errorf("schema: type %q: invalid or duplicate section id %q", t.ID, s.ID)
		}
		sectionIDs[s.ID] = struct{}{}
	}
	return nil
}
