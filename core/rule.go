package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Rule is the detection rule that produced an alert. Raw carries the
// original vendor representation when available.
type Rule struct {
	ContextUUID string    `json:"uuid"`
	Timestamp   time.Time `json:"timestamp"`

	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Severity    int            `json:"severity"` // 0-100
	Tags        []string       `json:"tags,omitempty"`
	References  []string       `json:"references,omitempty"`
	Query       string         `json:"query,omitempty"`
	Raw         map[string]any `json:"raw,omitempty"`
}

// NewRule creates a rule context stamped with the current time
func NewRule(id, name string, severity int) *Rule {
	return &Rule{
		ContextUUID: uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		ID:          id,
		Name:        name,
		Severity:    severity,
	}
}

// UUID returns the context identity
func (r *Rule) UUID() string { return r.ContextUUID }

// Time returns the timeline timestamp
func (r *Rule) Time() time.Time { return r.Timestamp }

// Indicators returns an empty set; rules describe detection, not evidence
func (r *Rule) Indicators() *IndicatorSet {
	return NewIndicatorSet()
}

// Validate requires id, name and a severity in range
func (r *Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule %s is missing an id", r.ContextUUID)
	}
	if r.Name == "" {
		return fmt.Errorf("rule %s is missing a name", r.ID)
	}
	if r.Severity < 0 || r.Severity > 100 {
		return fmt.Errorf("rule %s has severity %d out of range 0-100", r.ID, r.Severity)
	}
	return nil
}

func (r *Rule) String() string {
	return fmt.Sprintf("Rule(%s, %s, severity=%d)", r.ID, r.Name, r.Severity)
}

var _ Context = (*Rule)(nil)
