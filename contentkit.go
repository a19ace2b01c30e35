// Package contentkit hosts the content transformation engine: it loads
// content type definitions, persists entities in SQLite and serves the
// edit-tree JSON API that a generic admin front end renders and posts back.
//
// Users may provide their own templ components for the admin pages via the
// ViewFuncs struct; contentkit handles the handler logic, middleware and
// database operations.
package contentkit

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/contentkit/block"
	"github.com/eringen/contentkit/field"
	"github.com/eringen/contentkit/logger"
	"github.com/eringen/contentkit/schema"
	"github.com/eringen/contentkit/transform"
	"github.com/eringen/contentkit/views"
)

// ViewFuncs holds the templ components rendered for the admin pages. Nil
// entries fall back to the built-in views.
type ViewFuncs struct {
	AdminLogin  func(siteName string, showError bool, csrfToken string) templ.Component
	AdminShell  func(siteName string, types []*schema.Type, csrfToken string) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

func (v *ViewFuncs) setDefaults() {
	if v.AdminLogin == nil {
		v.AdminLogin = views.Login
	}
	if v.AdminShell == nil {
		v.AdminShell = views.Shell
	}
	if v.NotFound == nil {
		v.NotFound = views.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = views.ServerError
	}
}

// App is the central contentkit application. It wires together the
// registries, store, editor, handlers and middleware.
type App struct {
	Config      SiteConfig
	Echo        *echo.Echo
	Store       *Store
	Taxonomy    *TaxonomyCache
	Editor      *Editor
	Transformer *transform.Transformer
	Log         *logger.Logger
	Views       ViewFuncs

	loginLimiter *LoginLimiter
	workflow     transform.Workflow
	definitions  []*schema.Definitions
	customRoutes []func(*App)
}

// New creates a new contentkit App with the given configuration and view functions.
func New(cfg SiteConfig, vf ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()
	vf.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  vf,
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init validates the configuration, builds the type registries, opens the
// store and registers middleware and routes. Start calls it.
func (a *App) Init() error {
	if err := a.initCore(); err != nil {
		return err
	}
	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) initCore() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("contentkit: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("contentkit: SessionSecret is required")
	}
	if a.Log == nil {
		l, err := logger.New(a.Config.LogMode)
		if err != nil {
			return fmt.Errorf("contentkit: init logger: %w", err)
		}
		a.Log = l
	}

	docs := a.definitions
	if len(docs) == 0 {
		loaded, err := schema.LoadPath(a.Config.SchemaPath)
		if err != nil {
			return fmt.Errorf("contentkit: load definitions: %w", err)
		}
		docs = loaded
	}
	tr, err := BuildTransformer(docs)
	if err != nil {
		return fmt.Errorf("contentkit: %w", err)
	}
	a.Transformer = tr

	store, err := NewStore(a.Config.DatabasePath, tr.Schemas())
	if err != nil {
		return fmt.Errorf("contentkit: init store: %w", err)
	}
	a.Store = store

	a.Taxonomy = NewTaxonomyCache(a.Store, a.Config.TaxonomyCacheTTL)
	a.Editor = NewEditor(tr, a.Store, a.Taxonomy, a.workflow, a.Log.With("component", "editor"))
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.Log.Info("content types loaded", "types", len(tr.Schemas().Types()), "database", a.Config.DatabasePath)
	return nil
}

// BuildTransformer registers the built-in field and block types plus docs
// and returns a transformer over the frozen registries.
func BuildTransformer(docs []*schema.Definitions) (*transform.Transformer, error) {
	fields := field.NewRegistry()
	if err := field.RegisterBuiltins(fields); err != nil {
		return nil, err
	}
	blocks := block.NewRegistry()
	if err := block.RegisterBuiltins(blocks); err != nil {
		return nil, err
	}
	schemas, err := schema.Build(docs, fields, blocks)
	if err != nil {
		return nil, err
	}
	return transform.New(fields, blocks, schemas), nil
}

// Start initializes the app and starts the server.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Log.Info("listening", "addr", a.Config.Addr)
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/sitemap.xml", a.handleSitemap)

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)

	api := e.Group("/admin/api", requireAdmin)
	api.GET("/types", a.handleTypes)
	api.GET("/content/:type", a.handleList)
	api.GET("/content/:type/new", a.handleNew)
	api.GET("/content/:type/:id", a.handleLoad)
	api.POST("/content", a.handleSave)
	api.DELETE("/content/:type/:id", a.handleDelete)
	api.POST("/content/:type/:id/publish", a.handlePublish)
	api.DELETE("/content/:type/:id/publish", a.handleUnpublish)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		a.Store.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("contentkit: required environment variable %s is not set", key)
	}
	return v
}
