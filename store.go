package contentkit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/eringen/contentkit/content"
	"github.com/eringen/contentkit/schema"
)

// Store wraps a SQLite database and persists content entities. Regions and
// blocks are kept in a CBOR body next to the columns used for listing.
type Store struct {
	db      *sql.DB
	schemas *schema.Registry
	now     func() time.Time
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations. schemas resolves the group
// of each saved entity.
func NewStore(path string, schemas *schema.Registry) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the admin API read while a save is in flight; the busy
	// timeout makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, schemas: schemas, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS content (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    grp TEXT NOT NULL,
    title TEXT NOT NULL,
    slug TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '',
    body BLOB NOT NULL,
    digest TEXT NOT NULL,
    created TEXT NOT NULL,
    modified TEXT NOT NULL,
    published TEXT
);
CREATE INDEX IF NOT EXISTS content_type ON content (type);
CREATE INDEX IF NOT EXISTS content_grp ON content (grp);
`)
	return err
}

// Create returns a new, unsaved entity of typeID with a fresh id. Its
// created time stays zero until the first save.
func (s *Store) Create(ctx context.Context, typeID string) (content.Entity, error) {
	if _, ok := s.schemas.ResolveType(typeID); !ok {
		return content.Entity{}, fmt.Errorf("contentkit: create: unknown content type %q", typeID)
	}
	return content.Entity{ID: uuid.NewString(), Type: typeID}, nil
}

// GetByID returns the entity with id. typeID, when set, must match the
// stored type.
func (s *Store) GetByID(ctx context.Context, id, typeID string) (content.Entity, error) {
	var (
		e                 content.Entity
		body              []byte
		created, modified string
		published         sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, type, body, created, modified, published FROM content WHERE id = ?`, id).
		Scan(&e.ID, &e.Type, &body, &created, &modified, &published)
	if err != nil {
		return content.Entity{}, err
	}
	if typeID != "" && e.Type != typeID {
		return content.Entity{}, ErrNotFound
	}
	if err := decodeDocument(body, &e); err != nil {
		return content.Entity{}, fmt.Errorf("contentkit: decode %s: %w", id, err)
	}
	if e.Created, err = parseTime(created); err != nil {
		return content.Entity{}, err
	}
	if e.Modified, err = parseTime(modified); err != nil {
		return content.Entity{}, err
	}
	if e.Published, err = parseNullTime(published); err != nil {
		return content.Entity{}, err
	}
	return e, nil
}

// Save upserts e. Taxonomies are normalized to lowercase. The modified
// time only moves when the stored document actually changes.
func (s *Store) Save(ctx context.Context, e content.Entity) (content.Entity, error) {
	if e.ID == "" {
		return content.Entity{}, errors.New("contentkit: save: entity has no id")
	}
	st, ok := s.schemas.ResolveType(e.Type)
	if !ok {
		return content.Entity{}, fmt.Errorf("contentkit: save: unknown content type %q", e.Type)
	}

	e.Tags = normalizeTaxonomies(e.Tags)
	if e.Category != nil {
		c := content.Taxonomy(normalizeTag(string(*e.Category)))
		e.Category = &c
		if c == "" {
			e.Category = nil
		}
	}
	body, digest, err := encodeDocument(e)
	if err != nil {
		return content.Entity{}, fmt.Errorf("contentkit: encode %s: %w", e.ID, err)
	}

	now := s.now().UTC()
	if e.Created.IsZero() {
		e.Created = now
	}
	category := ""
	if e.Category != nil {
		category = string(*e.Category)
	}
	var published sql.NullString
	if e.Published != nil {
		published = sql.NullString{String: formatTime(*e.Published), Valid: true}
	}

	var modified string
	err = s.db.QueryRowContext(ctx, `
INSERT INTO content (id, type, grp, title, slug, category, tags, body, digest, created, modified, published)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    title = excluded.title,
    slug = excluded.slug,
    category = excluded.category,
    tags = excluded.tags,
    body = excluded.body,
    modified = CASE WHEN content.digest = excluded.digest THEN content.modified ELSE excluded.modified END,
    digest = excluded.digest,
    published = excluded.published
RETURNING modified`,
		e.ID, st.ID, st.Group, e.Title, e.Slug, category, joinTags(e.TagLabels()), body, digest,
		formatTime(e.Created), formatTime(now), published,
	).Scan(&modified)
	if err != nil {
		return content.Entity{}, fmt.Errorf("contentkit: save %s: %w", e.ID, err)
	}
	if e.Modified, err = parseTime(modified); err != nil {
		return content.Entity{}, err
	}
	return e, nil
}

// Delete removes an entity by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM content WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// AllCategories returns the sorted categories used in group.
func (s *Store) AllCategories(ctx context.Context, group string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM content WHERE grp = ? AND category != '' ORDER BY category`, group)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// AllTags returns a sorted, deduplicated slice of all tags used in group.
func (s *Store) AllTags(ctx context.Context, group string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tags FROM content WHERE grp = ?`, group)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[t] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var result []string
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// ListByType returns every entity of typeID, most recently modified first.
func (s *Store) ListByType(ctx context.Context, typeID string) ([]Summary, error) {
	return s.listSummaries(ctx, `SELECT id, type, title, slug, modified, published FROM content WHERE type = ? ORDER BY modified DESC, id`, typeID)
}

// ListPublished returns every entity with a publish date.
func (s *Store) ListPublished(ctx context.Context) ([]Summary, error) {
	return s.listSummaries(ctx, `SELECT id, type, title, slug, modified, published FROM content WHERE published IS NOT NULL ORDER BY published DESC, id`)
}

func (s *Store) listSummaries(ctx context.Context, query string, args ...any) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum       Summary
			modified  string
			published sql.NullString
		)
		if err := rows.Scan(&sum.ID, &sum.Type, &sum.Title, &sum.Slug, &modified, &published); err != nil {
			return nil, err
		}
		if sum.Modified, err = parseTime(modified); err != nil {
			return nil, err
		}
		if sum.Published, err = parseNullTime(published); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "," + strings.Join(tags, ",") + ","
}

// normalizeTaxonomies lowercases tags and drops blanks, repeats and commas,
// which the tag column uses as its separator.
func normalizeTaxonomies(in []content.Taxonomy) []content.Taxonomy {
	var out []content.Taxonomy
	seen := make(map[string]bool, len(in))
	for _, t := range in {
		n := normalizeTag(strings.ReplaceAll(string(t), ",", " "))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, content.Taxonomy(n))
	}
	return out
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("contentkit: parse time %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
