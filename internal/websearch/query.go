package websearch

import (
	"strings"
)

// BuildQuery joins the free-text words and appends the optional
// filetype disjunction and site restriction.
func BuildQuery(words []string, fileTypes []string, site string) string {
	var b strings.Builder
	b.WriteString(strings.Join(words, " "))

	for i, ft := range fileTypes {
		if i == 0 {
			b.WriteString(" filetype:")
		} else {
			b.WriteString(" OR filetype:")
		}
		b.WriteString(ft)
	}

	if site != "" {
		b.WriteString(" site:")
		b.WriteString(site)
	}

	return b.String()
}

// ParseFileTypes splits a comma separated list, dropping blank entries.
func ParseFileTypes(list string) []string {
	var types []string
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			types = append(types, part)
		}
	}
	return types
}
