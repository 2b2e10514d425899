package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContextLog carries a raw log line relevant to an alert. Every log needs
// an origin: either the IP it was emitted from or a reference to the device
// context it belongs to.
type ContextLog struct {
	ContextUUID string    `json:"uuid"`
	Timestamp   time.Time `json:"timestamp"`

	Message          string         `json:"message"`
	Source           string         `json:"source,omitempty"`
	SourceIP         string         `json:"source_ip,omitempty"`
	SourceDeviceUUID string         `json:"source_device_uuid,omitempty"`
	Level            string         `json:"level,omitempty"`
	CustomFields     map[string]any `json:"custom_fields,omitempty"`
	RelatedRule      *Rule          `json:"related_rule,omitempty"`
}

// NewContextLog creates a log context stamped with the current time. The
// caller still has to set SourceIP or SourceDeviceUUID before the log
// passes validation.
func NewContextLog(source, message string) *ContextLog {
	return &ContextLog{
		ContextUUID: uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		Source:      source,
		Message:     message,
	}
}

// UUID returns the context identity
func (l *ContextLog) UUID() string { return l.ContextUUID }

// Time returns the timeline timestamp
func (l *ContextLog) Time() time.Time { return l.Timestamp }

// Indicators returns an empty set; raw log lines are not parsed here
func (l *ContextLog) Indicators() *IndicatorSet {
	return NewIndicatorSet()
}

// Validate requires the message and a source IP or device reference
func (l *ContextLog) Validate() error {
	if l.Message == "" {
		return fmt.Errorf("log %s is missing the message", l.ContextUUID)
	}
	if l.SourceIP == "" && l.SourceDeviceUUID == "" {
		return fmt.Errorf("log %s has neither a source IP nor a source device", l.ContextUUID)
	}
	return nil
}

func (l *ContextLog) String() string {
	return fmt.Sprintf("Log(%s: %s)", l.Source, l.Message)
}

var _ Context = (*ContextLog)(nil)
