package contentkit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/contentkit/content"
	"github.com/eringen/contentkit/field"
)

func TestNewStore(t *testing.T) {
	s, _, cleanup := setupTestStore(t)
	defer cleanup()

	if s == nil {
		t.Fatal("store should not be nil")
	}
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
}

func TestStoreSaveAndGet(t *testing.T) {
	s, _, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	e := samplePage("p1")
	saved, err := s.Save(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, testNow, saved.Modified)
	assert.Equal(t, []content.Taxonomy{"go", "cms"}, saved.Tags, "tags are lowercased")
	require.NotNil(t, saved.Category)
	assert.Equal(t, content.Taxonomy("news"), *saved.Category)

	got, err := s.GetByID(ctx, "p1", "page")
	require.NoError(t, err)
	assert.Equal(t, saved, got)
	assert.Equal(t, e.Regions, got.Regions)
	assert.Equal(t, e.Blocks, got.Blocks)
	assert.Equal(t, e.Created, got.Created)
	require.NotNil(t, got.Published)
	assert.True(t, e.Published.Equal(*got.Published))
}

func TestStoreGetNotFound(t *testing.T) {
	s, _, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := s.GetByID(ctx, "missing", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID error = %v, want ErrNotFound", err)
	}

	_, err = s.Save(ctx, samplePage("p1"))
	require.NoError(t, err)
	_, err = s.GetByID(ctx, "p1", "product")
	assert.ErrorIs(t, err, ErrNotFound, "type mismatch reads as not found")
}

func TestStoreCreate(t *testing.T) {
	s, _, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	a, err := s.Create(ctx, "page")
	require.NoError(t, err)
	b, err := s.Create(ctx, "page")
	require.NoError(t, err)
	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, a.Created.IsZero())

	_, err = s.GetByID(ctx, a.ID, "")
	assert.ErrorIs(t, err, ErrNotFound, "created entities are not persisted")

	_, err = s.Create(ctx, "missing")
	assert.Error(t, err)
}

func TestStoreSaveKeepsModifiedWhenUnchanged(t *testing.T) {
	s, _, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	first, err := s.Save(ctx, samplePage("p1"))
	require.NoError(t, err)

	s.now = func() time.Time { return testNow.Add(time.Hour) }
	again, err := s.Save(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, first.Modified, again.Modified)

	again.Title = "About"
	changed, err := s.Save(ctx, again)
	require.NoError(t, err)
	assert.Equal(t, testNow.Add(time.Hour), changed.Modified)
	assert.Equal(t, first.Created, changed.Created)
}

func TestStoreTaxonomies(t *testing.T) {
	s, _, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	p2 := samplePage("p2")
	other := content.Taxonomy("Events")
	p2.Category = &other
	p2.Tags = []content.Taxonomy{"web", " GO "}
	product := content.Entity{
		ID: "x1", Type: "product", Title: "Mug",
		Tags: []content.Taxonomy{"kitchen"},
		Regions: map[string]content.RegionValue{
			"details": content.Single{Group: content.Keyed{Values: map[string]field.Value{
				"name": text("Mug"),
			}}},
		},
	}
	for _, e := range []content.Entity{samplePage("p1"), p2, product} {
		_, err := s.Save(ctx, e)
		require.NoError(t, err)
	}

	cats, err := s.AllCategories(ctx, "site")
	require.NoError(t, err)
	assert.Equal(t, []string{"events", "news"}, cats)

	tags, err := s.AllTags(ctx, "site")
	require.NoError(t, err)
	assert.Equal(t, []string{"cms", "go", "web"}, tags)

	tags, err = s.AllTags(ctx, "shop")
	require.NoError(t, err)
	assert.Equal(t, []string{"kitchen"}, tags)

	cats, err = s.AllCategories(ctx, "shop")
	require.NoError(t, err)
	assert.Empty(t, cats)
}

func TestStoreListings(t *testing.T) {
	s, _, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	draft := samplePage("p2")
	draft.Published = nil
	draft.Slug = "draft"
	for _, e := range []content.Entity{samplePage("p1"), draft} {
		_, err := s.Save(ctx, e)
		require.NoError(t, err)
	}

	pages, err := s.ListByType(ctx, "page")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "p1", pages[0].ID)
	assert.Equal(t, "About us", pages[0].Title)

	published, err := s.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "about-us", published[0].Slug)
	require.NotNil(t, published[0].Published)

	products, err := s.ListByType(ctx, "product")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestStoreDelete(t *testing.T) {
	s, _, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := s.Save(ctx, samplePage("p1"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "p1"))

	_, err = s.GetByID(ctx, "p1", "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "p1"), ErrNotFound)
}

func TestEncodeDocumentIsDeterministic(t *testing.T) {
	e := samplePage("p1")
	body1, digest1, err := encodeDocument(e)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		body, digest, err := encodeDocument(e)
		require.NoError(t, err)
		assert.Equal(t, body1, body)
		assert.Equal(t, digest1, digest)
	}
	assert.Len(t, digest1, 64)

	e.Title = "Changed"
	_, digest2, err := encodeDocument(e)
	require.NoError(t, err)
	assert.NotEqual(t, digest1, digest2)
}

func TestDecodeDocumentShapes(t *testing.T) {
	e := content.Entity{
		Regions: map[string]content.RegionValue{
			"empty":  content.Single{},
			"bare":   content.Single{Group: content.Bare{}},
			"keyed":  content.Single{Group: content.Keyed{Values: map[string]field.Value{}}},
			"list":   content.Collection{},
			"choice": content.Collection{Items: []content.FieldGroup{content.Bare{Value: field.Choice{Type: "alignment", Code: 2}}}},
		},
	}
	body, _, err := encodeDocument(e)
	require.NoError(t, err)

	var got content.Entity
	require.NoError(t, decodeDocument(body, &got))
	assert.Equal(t, e.Regions, got.Regions)
	assert.Nil(t, got.Blocks)
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{",,", nil},
		{",go,web,", []string{"go", "web"}},
		{"go", []string{"go"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTags(tt.in), "ParseTags(%q)", tt.in)
	}
	assert.Equal(t, ",a,b,", joinTags([]string{"a", "b"}))
	assert.Equal(t, "", joinTags(nil))
}
