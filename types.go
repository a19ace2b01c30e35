package contentkit

import (
	"context"
	"database/sql"
	"time"

	"github.com/eringen/contentkit/content"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = sql.ErrNoRows

// Repository is the storage collaborator of the editor. Store implements
// it on SQLite.
type Repository interface {
	GetByID(ctx context.Context, id, typeID string) (content.Entity, error)
	// Create returns a new, unsaved entity of typeID with a fresh id.
	Create(ctx context.Context, typeID string) (content.Entity, error)
	// Save upserts e and returns it as stored.
	Save(ctx context.Context, e content.Entity) (content.Entity, error)
	Delete(ctx context.Context, id string) error
	AllCategories(ctx context.Context, group string) ([]string, error)
	AllTags(ctx context.Context, group string) ([]string, error)
	ListByType(ctx context.Context, typeID string) ([]Summary, error)
	ListPublished(ctx context.Context) ([]Summary, error)
}

// Summary is the listing form of an entity.
type Summary struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Slug      string     `json:"slug,omitempty"`
	Modified  time.Time  `json:"modified"`
	Published *time.Time `json:"published,omitempty"`
}
