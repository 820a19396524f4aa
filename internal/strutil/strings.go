package strutil

import (
	"net/url"
	"path"
	"strings"
)

const fixtureExt = ".xml"

// Uniques removes duplicates and keeps the order of the first occurrence
// For example Uniques([]string{"a", "b", "a"}) return []string{"a", "b"}
func Uniques[T comparable](items []T) []T {
	seen := make(map[T]struct{}, len(items))
	list := make([]T, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}

		seen[item] = struct{}{}
		list = append(list, item)
	}

	return list
}

// FixtureName returns the local file name a feed URL is recorded under:
// the last path segment cut at its first dot, with the xml extension.
// https://host/rss/fxref-usd.html => fxref-usd.xml
func FixtureName(u url.URL) string {
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		name = ""
	}

	name, _, _ = strings.Cut(name, ".")
	if name == "" {
		name = "index"
	}

	return name + fixtureExt
}
