// Package info renders the theme's info.xml from its template.
package info

import (
	"strings"

	"github.com/provide-io/countertheme/pkg/theme"
)

// Render replaces every ${themeName} placeholder in tmpl with themeName.
// A template without the placeholder is returned unchanged.
func Render(tmpl, themeName string) string {
	return strings.ReplaceAll(tmpl, theme.ThemeNamePlaceholder, themeName)
}
