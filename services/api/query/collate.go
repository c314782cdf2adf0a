package query

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// comparer orders department and category names the way a Spanish reader expects
// ("Bogotá" before "Bolívar", "Ñ" after "N"). A comparer is not safe for concurrent use.
type comparer struct {
	col *collate.Collator
}

func newComparer() *comparer {
	return &comparer{col: collate.New(language.Spanish)}
}

func (c *comparer) less(a, b string) bool {
	if r := c.col.CompareString(a, b); r != 0 {
		return r < 0
	}
	return a < b
}

func (c *comparer) lessKeys(a, b []string) bool {
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		return c.less(a[i], b[i])
	}
	return false
}

func (c *comparer) sortStrings(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		return c.less(values[i], values[j])
	})
}
