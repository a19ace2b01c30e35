// Package field implements the field type registry: the table of field
// kinds a content schema may reference, with their UI component, canonical
// string encoding, title extraction and, for choice kinds, the enumerated
// option list.
package field

// Kind selects which Value variant a field type produces.
type Kind int

const (
	// KindScalar values carry free text in canonical form (strings,
	// numbers, dates, flags).
	KindScalar Kind = iota
	// KindReference values point at another stored object (media, page, post).
	KindReference
	// KindChoice values carry an integer code from the type's option list.
	KindChoice
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindReference:
		return "reference"
	case KindChoice:
		return "choice"
	default:
		return "unknown"
	}
}

// Option is one selectable entry of a choice field.
type Option struct {
	Code  int    `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Def declares one field of a region or of a block type.
type Def struct {
	ID          string         `yaml:"id" json:"id"`
	Title       string         `yaml:"title" json:"title"`
	Type        string         `yaml:"type" json:"type"`
	Placeholder string         `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	HalfWidth   bool           `yaml:"halfWidth,omitempty" json:"halfWidth,omitempty"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	Settings    map[string]any `yaml:"settings,omitempty" json:"settings,omitempty"`
}

// Value is a field value tagged by its field type id. The concrete type is
// one of Scalar, Reference or Choice.
type Value interface {
	TypeID() string
	isValue()
}

// Scalar holds a text-encoded value such as a string, number or date.
type Scalar struct {
	Type string
	Text string
}

// Reference points at a stored media item, page or post by id.
// An empty ID means no reference is set.
type Reference struct {
	Type string
	ID   string
}

// Choice holds the code of a selected option.
type Choice struct {
	Type string
	Code int
}

func (v Scalar) TypeID() string    { return v.Type }
func (v Reference) TypeID() string { return v.Type }
func (v Choice) TypeID() string    { return v.Type }

func (Scalar) isValue()    {}
func (Reference) isValue() {}
func (Choice) isValue()    {}
