package contentkit

import (
	"time"

	"github.com/eringen/contentkit/logger"
	"github.com/eringen/contentkit/schema"
	"github.com/eringen/contentkit/transform"
)

// SiteConfig holds all configuration for a contentkit site.
type SiteConfig struct {
	Name string // Site name shown in the admin (default "contentkit")
	URL  string // Canonical URL (default "http://localhost:3000")

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/content.db")
	SchemaPath   string // Content type definitions, a file or directory (default "content-types.yaml")

	AdminUser     string // Actor name recorded for admin changes (default "admin")
	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	LogMode          string        // "prod" for JSON logs (default "dev")
	TaxonomyCacheTTL time.Duration // Category and tag cache TTL (default 5min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "contentkit"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/content.db"
	}
	if c.SchemaPath == "" {
		c.SchemaPath = "content-types.yaml"
	}
	if c.AdminUser == "" {
		c.AdminUser = "admin"
	}
	if c.LogMode == "" {
		c.LogMode = "dev"
	}
	if c.TaxonomyCacheTTL == 0 {
		c.TaxonomyCacheTTL = 5 * time.Minute
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithWorkflow plugs an approval workflow into the editor.
func WithWorkflow(w transform.Workflow) Option {
	return func(a *App) {
		a.workflow = w
	}
}

// WithLogger replaces the logger built from SiteConfig.LogMode.
func WithLogger(l *logger.Logger) Option {
	return func(a *App) {
		a.Log = l
	}
}

// WithDefinitions supplies content type definitions directly instead of
// reading SiteConfig.SchemaPath.
func WithDefinitions(docs ...*schema.Definitions) Option {
	return func(a *App) {
		a.definitions = append(a.definitions, docs...)
	}
}
