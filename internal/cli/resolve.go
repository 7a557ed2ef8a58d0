package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
)

// resolve finds one item by numeric id or by fuzzy title match. An exact
// (case-insensitive) title wins; otherwise the best fuzzy score must be
// unique.
func resolve[T any](items []T, ref string, id func(T) int64, title func(T) string) (T, error) {
	var zero T
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return zero, fmt.Errorf("empty reference")
	}

	if n, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, it := range items {
			if id(it) == n {
				return it, nil
			}
		}
	}

	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = title(it)
		if strings.EqualFold(titles[i], ref) {
			return it, nil
		}
	}

	matches := fuzzy.Find(ref, titles)
	if len(matches) == 0 {
		return zero, fmt.Errorf("nothing matches %q", ref)
	}
	if len(matches) > 1 && matches[0].Score == matches[1].Score {
		var names []string
		for i, m := range matches {
			if i == 3 {
				names = append(names, "...")
				break
			}
			names = append(names, fmt.Sprintf("%q (#%d)", m.Str, id(items[m.Index])))
		}
		return zero, fmt.Errorf("%q is ambiguous: %s", ref, strings.Join(names, ", "))
	}
	return items[matches[0].Index], nil
}
