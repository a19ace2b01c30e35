package contentkit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/contentkit/content"
	"github.com/eringen/contentkit/edit"
	"github.com/eringen/contentkit/transform"
)

type stubWorkflow struct {
	allowed map[string]bool
}

func (w stubWorkflow) CanAdvance(_ content.Entity, actor string) bool { return w.allowed[actor] }

func (w stubWorkflow) CurrentStepName(e content.Entity) string {
	if e.Published != nil {
		return "live"
	}
	return "review"
}

func setupTestEditor(t *testing.T, wf transform.Workflow) (*Editor, *Store, func()) {
	t.Helper()
	s, tr, cleanup := setupTestStore(t)
	ed := NewEditor(tr, s, NewTaxonomyCache(s, time.Hour), wf, nil)
	ed.now = func() time.Time { return testNow }
	return ed, s, cleanup
}

func TestEditorCreateAndSave(t *testing.T) {
	ed, s, cleanup := setupTestEditor(t, nil)
	defer cleanup()
	ctx := context.Background()

	tree, err := ed.Create(ctx, "page", "ann")
	require.NoError(t, err)
	assert.Equal(t, content.StateNew, tree.State)
	assert.NotEmpty(t, tree.ID)
	require.Len(t, tree.Regions, 2)
	require.Len(t, tree.Region("hero").Items, 1)

	tree.Title = "About Us"
	tree.Region("hero").Items[0].Field("heading").Value = "Welcome"
	tree.Region("links").Items = []*edit.RegionItem{{Fields: []*edit.Field{
		{ID: "label", Value: "Docs"},
		{ID: "url", Value: "https://example.com/docs"},
	}}}
	saved, err := ed.Save(ctx, tree, "ann")
	require.NoError(t, err)

	assert.Equal(t, tree.ID, saved.ID)
	assert.Equal(t, content.StateUnpublished, saved.State)
	assert.Equal(t, "about-us", saved.Slug)
	assert.Equal(t, "Docs", saved.Region("links").Items[0].Title)

	stored, err := s.GetByID(ctx, tree.ID, "page")
	require.NoError(t, err)
	assert.Equal(t, testNow, stored.Created)
	assert.Equal(t, content.Single{Group: content.Bare{Value: text("Welcome")}}, stored.Regions["hero"])

	loaded, err := ed.Load(ctx, "page", tree.ID, false, "ann")
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestEditorSaveWithoutID(t *testing.T) {
	ed, s, cleanup := setupTestEditor(t, nil)
	defer cleanup()
	ctx := context.Background()

	tree, err := ed.Create(ctx, "product", "")
	require.NoError(t, err)
	tree.ID = ""
	tree.Title = "Mug"
	saved, err := ed.Save(ctx, tree, "")
	require.NoError(t, err)
	assert.Len(t, saved.ID, 36)
	assert.Equal(t, content.StatePublished, saved.State, "non-routed content has no draft state")
	assert.Empty(t, saved.Slug)

	list, err := s.ListByType(ctx, "product")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)
}

func TestEditorLoadDraft(t *testing.T) {
	ed, s, cleanup := setupTestEditor(t, nil)
	defer cleanup()
	ctx := context.Background()

	_, err := s.Save(ctx, samplePage("p1"))
	require.NoError(t, err)

	tree, err := ed.Load(ctx, "page", "p1", true, "")
	require.NoError(t, err)
	assert.Equal(t, content.StateDraft, tree.State)

	tree, err = ed.Load(ctx, "page", "p1", false, "")
	require.NoError(t, err)
	assert.Equal(t, content.StatePublished, tree.State)

	_, err = ed.Load(ctx, "page", "missing", false, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEditorTaxonomyOptions(t *testing.T) {
	ed, s, cleanup := setupTestEditor(t, nil)
	defer cleanup()
	ctx := context.Background()

	tree, err := ed.Create(ctx, "page", "")
	require.NoError(t, err)
	assert.Nil(t, tree.Taxonomy)

	_, err = s.Save(ctx, samplePage("p1"))
	require.NoError(t, err)

	// The cache still holds the empty lists from the first load.
	tree, err = ed.Create(ctx, "page", "")
	require.NoError(t, err)
	assert.Nil(t, tree.Taxonomy)

	saved, err := ed.Load(ctx, "page", "p1", false, "")
	require.NoError(t, err)
	saved.Tags = append(saved.Tags, "Extra")
	_, err = ed.Save(ctx, saved, "")
	require.NoError(t, err)

	tree, err = ed.Create(ctx, "page", "")
	require.NoError(t, err)
	require.NotNil(t, tree.Taxonomy)
	assert.Equal(t, []string{"news"}, tree.Taxonomy.Categories)
	assert.Equal(t, []string{"cms", "extra", "go"}, tree.Taxonomy.Tags)
}

func TestEditorSaveRejectsInvalidTree(t *testing.T) {
	ed, s, cleanup := setupTestEditor(t, nil)
	defer cleanup()
	ctx := context.Background()

	_, err := s.Save(ctx, samplePage("p1"))
	require.NoError(t, err)
	tree, err := ed.Load(ctx, "page", "p1", false, "")
	require.NoError(t, err)

	tree.Section("main").Blocks[0].Type = "RetiredBlock"
	_, err = ed.Save(ctx, tree, "")
	assert.True(t, errors.Is(err, transform.ErrStaleSchema), "err = %v", err)

	stored, err := s.GetByID(ctx, "p1", "")
	require.NoError(t, err)
	assert.Equal(t, "b1", stored.Blocks["main"][0].BlockID())
}

func TestEditorSaveUnknownType(t *testing.T) {
	ed, s, cleanup := setupTestEditor(t, nil)
	defer cleanup()
	ctx := context.Background()

	for _, id := range []string{"", "p9"} {
		_, err := ed.Save(ctx, &edit.Tree{ID: id, Type: "removed-type", Title: "Old"}, "ann")
		require.Error(t, err, "id %q", id)
		assert.True(t, transform.IsTransformError(err), "id %q: err = %v", id, err)
		assert.ErrorIs(t, err, transform.ErrStaleSchema)

		var te *transform.Error
		require.True(t, errors.As(err, &te))
		assert.Equal(t, "type", te.Path)
	}

	list, err := s.ListByType(ctx, "removed-type")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEditorSetPublished(t *testing.T) {
	wf := stubWorkflow{allowed: map[string]bool{"ann": true}}
	ed, s, cleanup := setupTestEditor(t, wf)
	defer cleanup()
	ctx := context.Background()

	page := samplePage("p1")
	page.Published = nil
	_, err := s.Save(ctx, page)
	require.NoError(t, err)

	tree, err := ed.Load(ctx, "page", "p1", false, "bob")
	require.NoError(t, err)
	assert.Equal(t, &edit.Workflow{Step: "review", CanAdvance: false}, tree.Workflow)

	_, err = ed.SetPublished(ctx, "page", "p1", true, "bob")
	assert.ErrorIs(t, err, ErrForbidden)

	tree, err = ed.SetPublished(ctx, "page", "p1", true, "ann")
	require.NoError(t, err)
	assert.Equal(t, content.StatePublished, tree.State)
	assert.Equal(t, "live", tree.Workflow.Step)

	stored, err := s.GetByID(ctx, "p1", "")
	require.NoError(t, err)
	require.NotNil(t, stored.Published)
	assert.Equal(t, testNow, *stored.Published)

	tree, err = ed.SetPublished(ctx, "page", "p1", false, "ann")
	require.NoError(t, err)
	assert.Equal(t, content.StateUnpublished, tree.State)

	product := content.Entity{ID: "x1", Type: "product", Title: "Mug"}
	_, err = s.Save(ctx, product)
	require.NoError(t, err)
	_, err = ed.SetPublished(ctx, "product", "x1", true, "ann")
	assert.ErrorIs(t, err, ErrNotRouted)
}

func TestEditorDelete(t *testing.T) {
	ed, s, cleanup := setupTestEditor(t, nil)
	defer cleanup()
	ctx := context.Background()

	_, err := s.Save(ctx, samplePage("p1"))
	require.NoError(t, err)

	assert.ErrorIs(t, ed.Delete(ctx, "product", "p1", ""), ErrNotFound)
	require.NoError(t, ed.Delete(ctx, "page", "p1", ""))
	_, err = ed.Load(ctx, "page", "p1", false, "")
	assert.ErrorIs(t, err, ErrNotFound)
}
