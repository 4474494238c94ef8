// Package display decorates result lines for the editor frontend: file-type
// icons and display-width truncation of matched lines.
package display

import (
	"path/filepath"
	"strings"
)

// DefaultIcon is the glyph used when no extension-specific icon is known.
const DefaultIcon = ''

var extIcons = map[string]rune{
	".c":    '',
	".cpp":  '',
	".css":  '',
	".go":   '',
	".h":    '',
	".html": '',
	".js":   '',
	".json": '',
	".lua":  '',
	".md":   '',
	".py":   '',
	".rb":   '',
	".rs":   '',
	".sh":   '',
	".toml": '',
	".ts":   '',
	".vim":  '',
	".yaml": '',
	".yml":  '',
}

var nameIcons = map[string]rune{
	".gitignore": '',
	"Dockerfile": '',
	"LICENSE":    '',
	"Makefile":   '',
}

func iconFor(path string) rune {
	base := filepath.Base(strings.TrimSpace(path))
	if icon, ok := nameIcons[base]; ok {
		return icon
	}
	if icon, ok := extIcons[strings.ToLower(filepath.Ext(base))]; ok {
		return icon
	}
	return DefaultIcon
}

// Prepend prefixes line with an icon chosen from its file extension.
func Prepend(line string) string {
	return string(iconFor(line)) + " " + line
}

// PrependGrep prefixes a grep-style "path:line:col:text" line with an icon
// chosen from the path component.
func PrependGrep(line string) string {
	path := line
	if i := strings.IndexByte(line, ':'); i > 0 {
		path = line[:i]
	}
	return string(iconFor(path)) + " " + line
}

// TrimTrailing removes the last line if it is blank, including an
// icon-decorated blank left over from splitting output on newlines.
func TrimTrailing(lines []string) []string {
	if len(lines) == 0 {
		return lines
	}
	last := lines[len(lines)-1]
	if last == "" || last == string(DefaultIcon)+" " {
		return lines[:len(lines)-1]
	}
	return lines
}

// Decorator returns the line decoration for the given mode: file icons,
// grep icons, or nil for undecorated output.
func Decorator(icon, grep bool) func(string) string {
	switch {
	case grep:
		return PrependGrep
	case icon:
		return Prepend
	default:
		return nil
	}
}
