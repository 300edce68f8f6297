package filter

import (
	"strings"
)

// All is the status tab that disables the status check.
const All = "all"

// Range is an inclusive numeric bound. A nil end is unconstrained.
type Range struct {
	Min *float64
	Max *float64
}

// Active reports whether either end is set.
func (r Range) Active() bool {
	return r.Min != nil || r.Max != nil
}

// Contains reports whether v lies within the bounds.
func (r Range) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// Criteria is the user's current selection.
type Criteria struct {
	Search string
	Status string
	Ranges map[string]Range
}

// SearchTerm is the trimmed search text.
func (c Criteria) SearchTerm() string {
	return strings.TrimSpace(c.Search)
}

// StatusActive reports whether a concrete status tab is selected.
func (c Criteria) StatusActive() bool {
	s := strings.TrimSpace(c.Status)
	return s != "" && !strings.EqualFold(s, All)
}

// RangeActive reports whether any range bound is set.
func (c Criteria) RangeActive() bool {
	for _, r := range c.Ranges {
		if r.Active() {
			return true
		}
	}
	return false
}

// Spec tells the reducer how to read an item.
type Spec[T any] struct {
	Search []func(T) string
	Status func(T) string
	Ranges map[string]func(T) float64
}

// Apply returns the items matching c in their original order. The input slice
// is never modified.
func Apply[T any](items []T, spec Spec[T], c Criteria) []T {
	term := strings.ToLower(c.SearchTerm())
	status := strings.TrimSpace(c.Status)
	checkStatus := c.StatusActive() && spec.Status != nil

	out := make([]T, 0, len(items))
	for _, item := range items {
		if term != "" && !matchesSearch(item, spec.Search, term) {
			continue
		}
		if checkStatus && spec.Status(item) != status {
			continue
		}
		if !withinRanges(item, spec.Ranges, c.Ranges) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchesSearch[T any](item T, fields []func(T) string, term string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field(item)), term) {
			return true
		}
	}
	return false
}

func withinRanges[T any](item T, getters map[string]func(T) float64, ranges map[string]Range) bool {
	for name, r := range ranges {
		if !r.Active() {
			continue
		}
		get, ok := getters[name]
		if !ok {
			continue
		}
		if !r.Contains(get(item)) {
			return false
		}
	}
	return true
}
