package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/contentkit/schema"
)

func TestToTitle(t *testing.T) {
	assert.Equal(t, "My Site", toTitle("my-site"))
	assert.Equal(t, "Docs", toTitle("docs"))
	assert.Equal(t, "", toTitle(""))
}

func TestWriteScaffold(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "acme")
	data := scaffoldData{ProjectName: "acme", ModuleName: "example.com/acme", SiteName: "Acme"}
	require.NoError(t, writeScaffold(dir, data))

	mod, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	require.NoError(t, err)
	assert.Contains(t, string(mod), "module example.com/acme")

	env, err := os.ReadFile(filepath.Join(dir, ".env.example"))
	require.NoError(t, err)
	assert.Contains(t, string(env), "SITE_NAME=Acme")

	mainGo, err := os.ReadFile(filepath.Join(dir, "main.go"))
	require.NoError(t, err)
	assert.Contains(t, string(mainGo), `contentkit.EnvOr("SITE_NAME", "Acme")`)

	docs, err := schema.LoadPath(filepath.Join(dir, "content-types.yaml"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.NotEmpty(t, docs[0].Types)
	assert.Equal(t, "page", docs[0].Types[0].ID)
}
