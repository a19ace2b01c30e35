package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/contentkit/field"
)

func newRegistries(t *testing.T) (*field.Registry, *Registry) {
	t.Helper()
	fields := field.NewRegistry()
	require.NoError(t, field.RegisterBuiltins(fields))
	fields.Freeze()
	blocks := NewRegistry()
	require.NoError(t, RegisterBuiltins(blocks))
	require.NoError(t, blocks.Validate(fields))
	blocks.Freeze()
	return fields, blocks
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Type{ID: "A"}))
	assert.Error(t, r.Register(Type{ID: "A"}), "duplicate")
	assert.Error(t, r.Register(Type{ID: " "}), "empty id")
	assert.Error(t, r.Register(Type{ID: "B", Children: []string{"A"}}), "leaf with children")
	assert.Error(t, r.Register(Type{ID: "C", TitleField: "missing"}), "undeclared title field")
	assert.Error(t, r.Register(Type{ID: "E", Fields: []field.Def{
		{ID: "text", Type: field.TypeString},
		{ID: "text", Type: field.TypeMarkdown},
	}}), "duplicate field id")
	assert.Error(t, r.Register(Type{ID: "F", Fields: []field.Def{{Type: field.TypeString}}}), "empty field id")
	_, ok := r.Resolve("E")
	assert.False(t, ok, "rejected type is not registered")

	got, ok := r.Resolve("A")
	require.True(t, ok)
	assert.Equal(t, "A", got.Title, "title defaults to id")

	r.Freeze()
	assert.ErrorIs(t, r.Register(Type{ID: "D"}), ErrFrozen)
}

func TestValidateUnknownReferences(t *testing.T) {
	fields := field.NewRegistry()
	require.NoError(t, field.RegisterBuiltins(fields))

	r := NewRegistry()
	require.NoError(t, r.Register(Type{ID: "Odd", Fields: []field.Def{{ID: "x", Type: "no-such-type"}}}))
	assert.ErrorIs(t, r.Validate(fields), field.ErrUnknownType)

	r = NewRegistry()
	require.NoError(t, r.Register(Type{ID: "G", Kind: Group, Children: []string{"Missing"}}))
	assert.ErrorIs(t, r.Validate(fields), ErrUnknownType)
}

func TestAllowsChild(t *testing.T) {
	_, blocks := newRegistries(t)
	gallery, _ := blocks.Resolve(TypeGallery)
	columns, _ := blocks.Resolve(TypeColumns)
	image, _ := blocks.Resolve(TypeImage)
	text, _ := blocks.Resolve(TypeText)

	assert.True(t, gallery.AllowsChild(image))
	assert.False(t, gallery.AllowsChild(text), "outside whitelist")
	assert.True(t, columns.AllowsChild(text), "empty whitelist allows leaves")
	assert.False(t, columns.AllowsChild(gallery), "nested groups are disallowed by default")
	assert.False(t, text.AllowsChild(image), "leaves have no children")

	nesting := &Type{ID: "Outer", Kind: Group, AllowNestedGroups: true}
	assert.True(t, nesting.AllowsChild(gallery))
}

func TestDisplayTitle(t *testing.T) {
	fields, blocks := newRegistries(t)

	quote, _ := blocks.Resolve(TypeQuote)
	values := map[string]field.Value{
		"quote":  field.Scalar{Type: field.TypeText, Text: "Stay hungry\nStay foolish"},
		"author": field.Scalar{Type: field.TypeString, Text: "Someone"},
	}
	assert.Equal(t, "Stay hungry", quote.DisplayTitle(values, fields))

	untitled := &Type{ID: "U", Fields: []field.Def{
		{ID: "a", Type: field.TypeString},
		{ID: "b", Type: field.TypeString},
	}}
	values = map[string]field.Value{
		"a": field.Scalar{Type: field.TypeString},
		"b": field.Scalar{Type: field.TypeString, Text: "second"},
	}
	assert.Equal(t, "second", untitled.DisplayTitle(values, fields))

	custom := &Type{ID: "C", TitleFunc: func(map[string]field.Value, Titler) string { return "fixed" }}
	assert.Equal(t, "fixed", custom.DisplayTitle(nil, fields))
}

func TestTypesOrdered(t *testing.T) {
	_, blocks := newRegistries(t)
	types := blocks.Types()
	require.NotEmpty(t, types)
	for i := 1; i < len(types); i++ {
		prev, cur := types[i-1], types[i]
		assert.True(t, prev.Category < cur.Category || (prev.Category == cur.Category && prev.ID < cur.ID),
			"%s/%s before %s/%s", prev.Category, prev.ID, cur.Category, cur.ID)
	}
}
