package service

import (
	"sort"
	"strings"
)

// CacheKey builds a deterministic key from a resource name and its
// filter/sort/pagination parameters. Parameters are normalized and sorted
// so that logically identical queries hit the same entry regardless of
// insertion order. Results that depend on caller identity must not be
// cached at all; that decision belongs to the caller.
func CacheKey(resource string, params map[string]string) string {
	if len(params) == 0 {
		return resource
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	b := strings.Builder{}
	b.WriteString(resource)
	for _, name := range names {
		b.WriteString(":")
		b.WriteString(strings.ToLower(strings.TrimSpace(name)))
		b.WriteString("=")
		b.WriteString(strings.TrimSpace(params[name]))
	}
	return b.String()
}
