package contentkit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eringen/contentkit/content"
	"github.com/eringen/contentkit/edit"
	"github.com/eringen/contentkit/logger"
	"github.com/eringen/contentkit/schema"
	"github.com/eringen/contentkit/transform"
)

var (
	// ErrForbidden is returned when the workflow does not let the actor
	// advance the entity.
	ErrForbidden = errors.New("contentkit: workflow does not allow this change")
	// ErrNotRouted is returned when publishing content that has no public
	// URL.
	ErrNotRouted = errors.New("contentkit: content type is not routed")
)

// Editor runs the create, load and save lifecycle of content through the
// transformer and the repository.
type Editor struct {
	tr       *transform.Transformer
	repo     Repository
	taxonomy *TaxonomyCache
	workflow transform.Workflow
	log      *logger.Logger
	now      func() time.Time
}

// NewEditor returns an Editor. workflow may be nil.
func NewEditor(tr *transform.Transformer, repo Repository, taxonomy *TaxonomyCache, workflow transform.Workflow, log *logger.Logger) *Editor {
	if log == nil {
		log = logger.Nop()
	}
	return &Editor{
		tr:       tr,
		repo:     repo,
		taxonomy: taxonomy,
		workflow: workflow,
		log:      log,
		now:      time.Now,
	}
}

// Types returns the registered content types.
func (ed *Editor) Types() []*schema.Type {
	return ed.tr.Schemas().Types()
}

// Create returns the edit tree of a new, unsaved entity of typeID.
func (ed *Editor) Create(ctx context.Context, typeID, actor string) (*edit.Tree, error) {
	e, err := ed.tr.Empty(typeID)
	if err != nil {
		return nil, err
	}
	fresh, err := ed.repo.Create(ctx, typeID)
	if err != nil {
		return nil, err
	}
	e.ID = fresh.ID
	return ed.load(ctx, e, false, actor)
}

// Load returns the edit tree of a stored entity.
func (ed *Editor) Load(ctx context.Context, typeID, id string, draft bool, actor string) (*edit.Tree, error) {
	e, err := ed.repo.GetByID(ctx, id, typeID)
	if err != nil {
		return nil, err
	}
	return ed.load(ctx, e, draft, actor)
}

func (ed *Editor) load(ctx context.Context, e content.Entity, draft bool, actor string) (*edit.Tree, error) {
	st, ok := ed.tr.Schemas().ResolveType(e.Type)
	if !ok {
		return nil, &transform.Error{Kind: transform.ErrUnknownType, Path: "type", Detail: fmt.Sprintf("content type %q", e.Type)}
	}
	opts := transform.LoadOptions{Draft: draft, Workflow: ed.workflow, Actor: actor}
	if ed.taxonomy != nil && (st.Features.UseCategory || st.Features.UseTags) {
		cats, tags, err := ed.taxonomy.Get(ctx, st.Group)
		if err != nil {
			return nil, fmt.Errorf("contentkit: taxonomies of %s: %w", st.Group, err)
		}
		opts.Categories, opts.Tags = cats, tags
	}
	return ed.tr.Load(e, opts)
}

// Save stores a submitted tree and returns the tree of the stored entity.
// Trees whose id is not stored yet create a new entity. Routed content
// without a slug gets one from its title.
func (ed *Editor) Save(ctx context.Context, tree *edit.Tree, actor string) (*edit.Tree, error) {
	if tree == nil {
		return nil, &transform.Error{Kind: transform.ErrShapeMismatch, Detail: "no tree submitted"}
	}
	if _, ok := ed.tr.Schemas().ResolveType(tree.Type); !ok {
		return nil, &transform.Error{Kind: transform.ErrStaleSchema, Path: "type", Detail: fmt.Sprintf("content type %q is no longer registered", tree.Type)}
	}
	var base content.Entity
	if tree.ID != "" {
		stored, err := ed.repo.GetByID(ctx, tree.ID, "")
		switch {
		case err == nil:
			base = stored
		case errors.Is(err, ErrNotFound):
			base = content.Entity{ID: tree.ID, Type: tree.Type}
		default:
			return nil, err
		}
	} else {
		fresh, err := ed.repo.Create(ctx, tree.Type)
		if err != nil {
			return nil, err
		}
		base = fresh
	}

	e, err := ed.tr.Save(tree, base)
	if err != nil {
		return nil, err
	}
	st, _ := ed.tr.Schemas().ResolveType(e.Type)
	if st.Routed && e.Slug == "" {
		e.Slug = Slugify(e.Title)
	}

	stored, err := ed.repo.Save(ctx, e)
	if err != nil {
		return nil, err
	}
	ed.invalidate(st.Group)
	ed.log.Info("content saved", "id", stored.ID, "type", stored.Type, "actor", actor)
	return ed.load(ctx, stored, false, actor)
}

// Delete removes the entity id of typeID.
func (ed *Editor) Delete(ctx context.Context, typeID, id, actor string) error {
	e, err := ed.repo.GetByID(ctx, id, typeID)
	if err != nil {
		return err
	}
	if err := ed.repo.Delete(ctx, e.ID); err != nil {
		return err
	}
	if st, ok := ed.tr.Schemas().ResolveType(e.Type); ok {
		ed.invalidate(st.Group)
	}
	ed.log.Info("content deleted", "id", e.ID, "type", e.Type, "actor", actor)
	return nil
}

// SetPublished publishes or unpublishes a routed entity. When a workflow is
// configured the actor must be allowed to advance the entity.
func (ed *Editor) SetPublished(ctx context.Context, typeID, id string, publish bool, actor string) (*edit.Tree, error) {
	e, err := ed.repo.GetByID(ctx, id, typeID)
	if err != nil {
		return nil, err
	}
	st, ok := ed.tr.Schemas().ResolveType(e.Type)
	if !ok {
		return nil, &transform.Error{Kind: transform.ErrStaleSchema, Path: "type", Detail: fmt.Sprintf("content type %q", e.Type)}
	}
	if !st.Routed {
		return nil, ErrNotRouted
	}
	if ed.workflow != nil && !ed.workflow.CanAdvance(e, actor) {
		return nil, ErrForbidden
	}
	if publish {
		if e.Published == nil {
			now := ed.now().UTC()
			e.Published = &now
		}
	} else {
		e.Published = nil
	}
	stored, err := ed.repo.Save(ctx, e)
	if err != nil {
		return nil, err
	}
	ed.log.Info("content publish state changed", "id", stored.ID, "published", publish, "actor", actor)
	return ed.load(ctx, stored, false, actor)
}

func (ed *Editor) invalidate(group string) {
	if ed.taxonomy != nil {
		ed.taxonomy.Invalidate(group)
	}
}
