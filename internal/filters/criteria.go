// Package filters applies user-selected criteria over a dataset snapshot,
// producing the filtered order/pageview/session collections every metric and
// table computation runs on.
package filters

import (
	"sort"

	"shoplens/internal/timeframe"
)

// StringSet is a set of selected category values. An empty (or nil) set means
// "no restriction", never "match nothing".
type StringSet map[string]struct{}

// NewStringSet builds a set from the given values, skipping empties.
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		s[v] = struct{}{}
	}
	return s
}

// Empty reports whether the set imposes no restriction.
func (s StringSet) Empty() bool { return len(s) == 0 }

// Allows reports whether v passes the set: always true for an empty set.
func (s StringSet) Allows(v string) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[v]
	return ok
}

// Values returns the selected values in sorted order.
func (s StringSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Criteria is one filter selection. Each populated predicate ANDs
// independently with the others.
type Criteria struct {
	Products  StringSet
	Sources   StringSet
	Devices   StringSet
	Campaigns StringSet
	DateRange *timeframe.Range
}

// IsZero reports whether the criteria impose no restriction at all.
func (c Criteria) IsZero() bool {
	return c.Products.Empty() && c.Sources.Empty() && c.Devices.Empty() &&
		c.Campaigns.Empty() && c.DateRange == nil
}
