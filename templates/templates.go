// Package templates embeds the storefront's HTML pages.
package templates

import "embed"

// FS holds layout.html, the partials and every page, addressed by slash path.
//
//go:embed *.html partials/*.html shop/*.html admin/*.html auth/*.html
var FS embed.FS
