package core

import (
	"time"

	"go.uber.org/zap"

	"aegis/metrics"
)

// Timeline stores context values ordered by timestamp. Insertion places a
// new entry before the first strictly greater timestamp, so entries with
// equal timestamps keep their insertion order. The timeline is bounded by
// MaxTimelineContexts; inserts past the cap are dropped silently apart from
// a debug log.
type Timeline struct {
	entries []Context
	logger  *zap.SugaredLogger
}

// NewTimeline creates an empty timeline
func NewTimeline(logger *zap.SugaredLogger) *Timeline {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Timeline{logger: logger}
}

// Insert adds a context at its timestamp position. It returns false when
// the entry was dropped because the timeline is full.
func (t *Timeline) Insert(c Context) bool {
	if c == nil {
		return false
	}
	if len(t.entries) >= MaxTimelineContexts {
		t.logger.Debugf("Timeline full (%d entries), dropping context %s", MaxTimelineContexts, c.UUID())
		metrics.ContextsDropped.Inc()
		return false
	}

	ts := c.Time()
	pos := len(t.entries)
	for i, existing := range t.entries {
		if existing.Time().After(ts) {
			pos = i
			break
		}
	}

	t.entries = append(t.entries, nil)
	copy(t.entries[pos+1:], t.entries[pos:])
	t.entries[pos] = c
	return true
}

// Len returns the number of entries
func (t *Timeline) Len() int {
	return len(t.entries)
}

// All returns the entries in timestamp order. The slice is a copy.
func (t *Timeline) All() []Context {
	out := make([]Context, len(t.entries))
	copy(out, t.entries)
	return out
}

// Between returns entries with from <= timestamp <= to, in order
func (t *Timeline) Between(from, to time.Time) []Context {
	var out []Context
	for _, c := range t.entries {
		ts := c.Time()
		if ts.Before(from) {
			continue
		}
		if ts.After(to) {
			break
		}
		out = append(out, c)
	}
	return out
}

// Filter returns entries matching the predicate, in order
func (t *Timeline) Filter(keep func(Context) bool) []Context {
	var out []Context
	for _, c := range t.entries {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// First returns the earliest entry, or nil when the timeline is empty
func (t *Timeline) First() Context {
	if len(t.entries) == 0 {
		return nil
	}
	return t.entries[0]
}

// Last returns the latest entry, or nil when the timeline is empty
func (t *Timeline) Last() Context {
	if len(t.entries) == 0 {
		return nil
	}
	return t.entries[len(t.entries)-1]
}
