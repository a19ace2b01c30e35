// Command contentkit serves the content admin, scaffolds new sites and
// inspects content type definitions.
package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/eringen/contentkit"
	"github.com/eringen/contentkit/schema"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "init":
		err = runInit(os.Args[2:])
	case "types":
		err = runTypes(os.Args[2:])
	case "version":
		fmt.Printf("contentkit %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`contentkit - schema-driven content editing engine

Usage:
  contentkit <command> [flags]

Commands:
  serve         Run the admin server
  init <name>   Create a new site from the scaffold
  types         List the content types of a definitions file or directory
  version       Print the contentkit version
  help          Show this help message

Run 'contentkit <command> --help' for the flags of a command.`)
}

func runServe(args []string) error {
	cfg := contentkit.SiteConfig{
		Name:          contentkit.EnvOr("SITE_NAME", ""),
		URL:           contentkit.EnvOr("SITE_URL", ""),
		AdminUser:     contentkit.EnvOr("ADMIN_USER", ""),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("ADMIN_SESSION_SECRET"),
		CookieSecure:  os.Getenv("COOKIE_SECURE") == "true",
	}

	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.StringVarP(&cfg.Addr, "addr", "a", contentkit.EnvOr("ADDR", ":3000"), "listen address")
	fs.StringVar(&cfg.DatabasePath, "db", contentkit.EnvOr("DATABASE_PATH", "data/content.db"), "SQLite database path")
	fs.StringVarP(&cfg.SchemaPath, "schema", "s", contentkit.EnvOr("SCHEMA_PATH", "content-types.yaml"), "content type definitions, a file or directory")
	fs.StringVar(&cfg.LogMode, "log", contentkit.EnvOr("LOG_MODE", "dev"), `log mode, "dev" or "prod"`)
	fs.DurationVar(&cfg.TaxonomyCacheTTL, "taxonomy-ttl", 0, "category and tag cache TTL (default 5m)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	app := contentkit.New(cfg, contentkit.ViewFuncs{})
	defer app.Close()
	return app.Start()
}

func runTypes(args []string) error {
	fs := pflag.NewFlagSet("types", pflag.ContinueOnError)
	path := fs.StringP("schema", "s", contentkit.EnvOr("SCHEMA_PATH", "content-types.yaml"), "content type definitions, a file or directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	docs, err := schema.LoadPath(*path)
	if err != nil {
		return err
	}
	tr, err := contentkit.BuildTransformer(docs)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tGROUP\tROUTED\tREGIONS\tSECTIONS")
	for _, t := range tr.Schemas().Types() {
		fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%d\n", t.ID, t.Group, t.Routed, len(t.Regions), len(t.Sections))
	}
	return w.Flush()
}
