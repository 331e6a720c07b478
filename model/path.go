package model

import "strings"

// TemplatePlaceholders returns the {name} placeholder names present in a
// path template, in order of appearance, without duplicates.
func TemplatePlaceholders(template string) []string {
	var names []string
	seen := make(map[string]bool)

	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			return names
		}
		close := strings.IndexByte(rest[open:], '}')
		if close < 0 {
			return names
		}
		name := rest[open+1 : open+close]
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		rest = rest[open+close+1:]
	}
}

// HasUnresolvedPlaceholders reports whether a path string still contains any
// {…} token. A fully resolved path never does.
func HasUnresolvedPlaceholders(path string) bool {
	open := strings.IndexByte(path, '{')
	if open < 0 {
		return false
	}
	return strings.IndexByte(path[open:], '}') >= 0
}
