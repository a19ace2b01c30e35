package contentkit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eringen/contentkit/block"
	"github.com/eringen/contentkit/content"
	"github.com/eringen/contentkit/field"
	"github.com/eringen/contentkit/schema"
	"github.com/eringen/contentkit/transform"
)

var testNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func loadTestDefinitions(t *testing.T) *schema.Definitions {
	t.Helper()
	docs, err := schema.LoadFile(filepath.Join("testdata", "content-types.yaml"))
	require.NoError(t, err)
	return docs
}

func newTestTransformer(t *testing.T) *transform.Transformer {
	t.Helper()
	tr, err := BuildTransformer([]*schema.Definitions{loadTestDefinitions(t)})
	require.NoError(t, err)
	return tr
}

func setupTestStore(t *testing.T) (*Store, *transform.Transformer, func()) {
	t.Helper()
	tr := newTestTransformer(t)
	s, err := NewStore(filepath.Join(t.TempDir(), "content.db"), tr.Schemas())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	s.now = func() time.Time { return testNow }
	return s, tr, func() { s.Close() }
}

func text(s string) field.Value { return field.Scalar{Type: field.TypeString, Text: s} }

func samplePage(id string) content.Entity {
	cat := content.Taxonomy("News")
	published := testNow.Add(-time.Hour)
	return content.Entity{
		ID: id, Type: "page", Title: "About us", Slug: "about-us",
		Excerpt:  "Who we are",
		Category: &cat,
		Tags:     []content.Taxonomy{"Go", "cms"},
		Regions: map[string]content.RegionValue{
			"hero": content.Single{Group: content.Bare{Value: text("Hello")}},
			"links": content.Collection{Items: []content.FieldGroup{
				content.Keyed{Values: map[string]field.Value{
					"label": text("Docs"),
					"url":   field.Scalar{Type: field.TypeURL, Text: "https://example.com"},
				}},
			}},
		},
		Blocks: map[string][]content.Block{
			"main": {
				content.Leaf{ID: "b1", Type: block.TypeHeading, Fields: map[string]field.Value{
					"text":   text("Intro"),
					"level":  field.Choice{Type: field.TypeHeadingLevel, Code: 2},
					"anchor": text(""),
				}},
				content.Group{
					ID: "g1", Type: block.TypeGallery,
					Fields: map[string]field.Value{"title": text("Team")},
					Children: []content.Block{
						content.Leaf{ID: "i1", Type: block.TypeImage, Fields: map[string]field.Value{
							"image":   field.Reference{Type: field.TypeMedia, ID: "m-1"},
							"caption": text("Ann"),
							"size":    field.Choice{Type: field.TypeImageSize, Code: 1},
						}},
					},
				},
			},
		},
		Created:   testNow.Add(-24 * time.Hour),
		Published: &published,
	}
}
