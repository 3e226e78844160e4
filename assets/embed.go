// Package assets bundles the theme definitions shipped with the binary.
package assets

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed themes/*.theme
var embeddedThemes embed.FS

// Theme returns the raw definition of a built-in theme. The second return
// value reports whether a built-in theme with that name exists.
func Theme(name string) ([]byte, bool) {
	data, err := embeddedThemes.ReadFile("themes/" + name + ".theme")
	if err != nil {
		return nil, false
	}
	return data, true
}

// ThemeNames lists the built-in theme names in sorted order.
func ThemeNames() []string {
	entries, err := fs.ReadDir(embeddedThemes, "themes")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".theme"))
	}
	sort.Strings(names)
	return names
}
