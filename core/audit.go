package core

import (
	"fmt"
	"strings"
	"time"
)

// AuditLog is one row of a case file's audit trail: the attempt of one
// playbook stage against the case. Rows are replaced in place on retry via
// CaseFile.UpdateAudit, keyed by (Playbook, Stage). PlaybookDone marks the
// row that finishes the whole playbook, not just its stage.
type AuditLog struct {
	Playbook    string `json:"playbook"`
	Stage       int    `json:"stage"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	StartTime  time.Time `json:"start_time"`
	ResultTime time.Time `json:"result_time,omitempty"`

	ResultMessage string   `json:"result_message,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
	Exception     string   `json:"exception,omitempty"`

	HadErrors      bool   `json:"had_errors"`
	HadWarnings    bool   `json:"had_warnings"`
	StageDone      bool   `json:"stage_done"`
	PlaybookDone   bool   `json:"playbook_done"`
	RetryRequested bool   `json:"retry_requested"`
	CaseRef        string `json:"case_ref,omitempty"`
}

// NewAuditLog creates a pending audit row for a playbook stage
func NewAuditLog(playbook string, stage int, title, description string) AuditLog {
	return AuditLog{
		Playbook:    playbook,
		Stage:       stage,
		Title:       title,
		Description: description,
		StartTime:   time.Now().UTC(),
	}
}

// SetSuccessful marks the stage done: the result time is stamped, any retry
// request is cleared, and the external case reference is recorded when
// given.
func (a *AuditLog) SetSuccessful(message, caseRef string) {
	a.ResultMessage = message
	a.ResultTime = time.Now().UTC()
	a.StageDone = true
	a.RetryRequested = false
	if caseRef != "" {
		a.CaseRef = caseRef
	}
}

// SetWarning finishes the stage with warnings: the result time is stamped
// and any previous error state and retry request are cleared.
func (a *AuditLog) SetWarning(message string) {
	a.Warnings = append(a.Warnings, message)
	a.HadWarnings = true
	a.HadErrors = false
	a.Exception = ""
	a.RetryRequested = false
	a.ResultTime = time.Now().UTC()
	a.StageDone = true
}

// SetError finishes the stage with errors. The error text is preserved and
// a retry of the stage is requested.
func (a *AuditLog) SetError(message string, err error) {
	a.ResultMessage = message
	a.ResultTime = time.Now().UTC()
	a.HadErrors = true
	a.RetryRequested = true
	a.StageDone = true
	if err != nil {
		a.Exception = err.Error()
	}
}

// Matches reports whether another row addresses the same playbook stage
func (a AuditLog) Matches(other AuditLog) bool {
	return a.Playbook == other.Playbook && a.Stage == other.Stage
}

// String renders the row as a multi-line block for notes and logs
func (a AuditLog) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s stage %d] %s\n", a.Playbook, a.Stage, a.Title)
	if a.Description != "" {
		fmt.Fprintf(&b, "%s\n", a.Description)
	}
	fmt.Fprintf(&b, "started: %s\n", a.StartTime.Format(time.RFC3339))
	if !a.ResultTime.IsZero() {
		fmt.Fprintf(&b, "finished: %s\n", a.ResultTime.Format(time.RFC3339))
	}
	if a.ResultMessage != "" {
		fmt.Fprintf(&b, "result: %s\n", a.ResultMessage)
	}
	for _, w := range a.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", w)
	}
	if a.Exception != "" {
		fmt.Fprintf(&b, "error: %s\n", a.Exception)
	}
	fmt.Fprintf(&b, "done: %t, retry: %t", a.StageDone, a.RetryRequested)
	return b.String()
}
