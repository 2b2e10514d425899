package core

import (
	"encoding/json"
	"strings"
	"time"
)

// Context is implemented by every value that can be attached to a case
// timeline. Implementations are plain data carriers; Validate reports
// structural problems, Indicators contributes to the case indicator set.
type Context interface {
	// UUID returns the stable identity of the context value
	UUID() string

	// Time returns the timestamp used for timeline ordering
	Time() time.Time

	// Indicators returns the indicators this context contributes
	Indicators() *IndicatorSet

	// Validate reports whether the context is structurally sound
	Validate() error

	// String returns a short human-readable summary
	String() string
}

// IndicatorSet holds extracted indicators grouped by category. Insertion is
// order-preserving with first-wins deduplication; empty strings never enter
// a set. Domain indicators are stored with any leading wildcard label
// stripped so `*.example.com` and `example.com` collapse to one entry.
type IndicatorSet struct {
	values map[IndicatorCategory][]string
	seen   map[IndicatorCategory]map[string]struct{}
}

// NewIndicatorSet creates an empty indicator set
func NewIndicatorSet() *IndicatorSet {
	return &IndicatorSet{
		values: make(map[IndicatorCategory][]string),
		seen:   make(map[IndicatorCategory]map[string]struct{}),
	}
}

// normalizeIndicator applies per-category canonicalization before insertion
func normalizeIndicator(category IndicatorCategory, value string) string {
	value = strings.TrimSpace(value)
	if category == IndicatorDomain {
		value = strings.TrimPrefix(value, "*.")
	}
	return value
}

// Add inserts a single indicator. Duplicates and empty values are ignored.
// It returns true if the value was actually inserted.
func (s *IndicatorSet) Add(category IndicatorCategory, value string) bool {
	value = normalizeIndicator(category, value)
	if value == "" || !category.IsValid() {
		return false
	}

	if s.seen[category] == nil {
		s.seen[category] = make(map[string]struct{})
	}
	if _, exists := s.seen[category][value]; exists {
		return false
	}

	s.seen[category][value] = struct{}{}
	s.values[category] = append(s.values[category], value)
	return true
}

// AddAll inserts multiple indicators into one category
func (s *IndicatorSet) AddAll(category IndicatorCategory, values ...string) {
	for _, v := range values {
		s.Add(category, v)
	}
}

// Merge folds another set into this one, preserving insertion order of the
// receiver first and the argument second. A nil argument is a no-op.
func (s *IndicatorSet) Merge(other *IndicatorSet) {
	if other == nil {
		return
	}
	for _, category := range AllIndicatorCategories {
		for _, v := range other.values[category] {
			s.Add(category, v)
		}
	}
}

// Values returns the indicators of one category in insertion order. The
// returned slice is a copy; mutating it does not affect the set.
func (s *IndicatorSet) Values(category IndicatorCategory) []string {
	src := s.values[category]
	if len(src) == 0 {
		return nil
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Contains reports whether the set holds the given indicator
func (s *IndicatorSet) Contains(category IndicatorCategory, value string) bool {
	value = normalizeIndicator(category, value)
	if s.seen[category] == nil {
		return false
	}
	_, ok := s.seen[category][value]
	return ok
}

// Len returns the total number of indicators across all categories
func (s *IndicatorSet) Len() int {
	total := 0
	for _, vs := range s.values {
		total += len(vs)
	}
	return total
}

// MarshalJSON encodes the set as a category-to-values object
func (s *IndicatorSet) MarshalJSON() ([]byte, error) {
	out := make(map[IndicatorCategory][]string, len(s.values))
	for category, vs := range s.values {
		if len(vs) > 0 {
			out[category] = vs
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a category-to-values object, re-applying the
// normalization and deduplication rules.
func (s *IndicatorSet) UnmarshalJSON(data []byte) error {
	var raw map[IndicatorCategory][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.values = make(map[IndicatorCategory][]string)
	s.seen = make(map[IndicatorCategory]map[string]struct{})
	for _, category := range AllIndicatorCategories {
		for _, v := range raw[category] {
			s.Add(category, v)
		}
	}
	return nil
}
