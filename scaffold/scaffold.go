// Package scaffold embeds the files written by "contentkit init".
package scaffold

import "embed"

// Templates holds the site templates. They use text/template syntax with
// [[ ]] delimiters and carry a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS
