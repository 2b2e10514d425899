package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Alert is a normalized security alert as delivered by a detection source.
// Context attachments feed the case timeline when the alert is correlated
// into a case file.
type Alert struct {
	AlertUUID   string     `json:"uuid"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
	Source      string     `json:"source"`
	VendorID    string     `json:"vendor_id,omitempty"`
	Severity    int        `json:"severity"` // 0-100
	State       AlertState `json:"state"`

	Rules []*Rule `json:"rules,omitempty"`

	Device      *ContextDevice        `json:"device,omitempty"`
	User        *Person               `json:"user,omitempty"`
	Flows       []*ContextFlow        `json:"flows,omitempty"`
	Processes   []*ContextProcess     `json:"processes,omitempty"`
	Files       []*ContextFile        `json:"files,omitempty"`
	ThreatIntel []*ContextThreatIntel `json:"threat_intel,omitempty"`
	Log         *ContextLog           `json:"log,omitempty"`
}

// NewAlert creates an alert in state new, stamped with the current time
func NewAlert(name, source string, severity int) *Alert {
	return &Alert{
		AlertUUID: uuid.NewString(),
		Name:      name,
		Source:    source,
		Severity:  severity,
		Timestamp: time.Now().UTC(),
		State:     AlertStateNew,
	}
}

// Age returns the time elapsed since the alert timestamp
func (a *Alert) Age() time.Duration {
	return time.Since(a.Timestamp)
}

// Contexts returns every context attachment of the alert, device and user
// first, then flows, processes, files, intel and the raw log.
func (a *Alert) Contexts() []Context {
	var out []Context
	if a.Device != nil {
		out = append(out, a.Device)
	}
	if a.User != nil {
		out = append(out, a.User)
	}
	for _, f := range a.Flows {
		out = append(out, f)
	}
	for _, p := range a.Processes {
		out = append(out, p)
	}
	for _, f := range a.Files {
		out = append(out, f)
	}
	for _, t := range a.ThreatIntel {
		out = append(out, t)
	}
	if a.Log != nil {
		out = append(out, a.Log)
	}
	return out
}

// Indicators aggregates the indicators of all context attachments
func (a *Alert) Indicators() *IndicatorSet {
	set := NewIndicatorSet()
	for _, c := range a.Contexts() {
		set.Merge(c.Indicators())
	}
	return set
}

// Validate requires name, source, timestamp, a severity in range and a
// valid state.
func (a *Alert) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("alert %s is missing a name", a.AlertUUID)
	}
	if a.Source == "" {
		return fmt.Errorf("alert %s is missing the source", a.Name)
	}
	if a.Timestamp.IsZero() {
		return fmt.Errorf("alert %s is missing a timestamp", a.Name)
	}
	if a.Severity < 0 || a.Severity > 100 {
		return fmt.Errorf("alert %s has severity %d out of range 0-100", a.Name, a.Severity)
	}
	if !a.State.IsValid() {
		return fmt.Errorf("alert %s has invalid state %q", a.Name, a.State)
	}
	return nil
}

func (a *Alert) String() string {
	return fmt.Sprintf("Alert(%s, %s, severity=%d, %s)", a.Name, a.Source, a.Severity, a.State)
}
