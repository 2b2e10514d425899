package soar

import (
	"context"
	"time"

	"aegis/core"
)

const (
	// WorkerName is the pseudo playbook name used for synthetic audit rows
	// written by the dispatcher itself.
	WorkerName = "CASE_WORKER"

	// FinalStage is the stage number of the synthetic closing audit row
	// appended after a case was handled successfully.
	FinalStage = 99
)

// Playbook handles a case file end to end. CanHandle is a cheap capability
// probe; Handle performs the work and returns the updated case file.
// Implementations must tolerate being asked about cases they cannot handle.
type Playbook interface {
	// Name returns the unique registry name of the playbook
	Name() string

	// CanHandle reports whether the playbook is able to work this case
	CanHandle(cf *core.CaseFile) bool

	// Handle works the case and returns the updated case file
	Handle(ctx context.Context, cf *core.CaseFile) (*core.CaseFile, error)
}

// AlertPlaybook groups raw alerts into case files ahead of dispatch
type AlertPlaybook interface {
	// Name returns the unique registry name of the alert playbook
	Name() string

	// HandleAlerts inspects the batch and returns any case files it created
	HandleAlerts(ctx context.Context, alerts []*core.Alert) ([]*core.CaseFile, error)
}

// PlaybookSetting is the per-playbook configuration entry controlling
// enablement. Order in the settings list has no meaning; dispatch order is
// registration order.
type PlaybookSetting struct {
	Name    string `json:"name" yaml:"name" mapstructure:"name"`
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
}

// DispatchOutcome classifies the result of dispatching one case
type DispatchOutcome string

const (
	// OutcomeHandled means at least one playbook completed the case
	OutcomeHandled DispatchOutcome = "handled"
	// OutcomeUnhandled means no playbook was able to take the case
	OutcomeUnhandled DispatchOutcome = "unhandled"
	// OutcomeWhitelisted means the case was filtered before any playbook ran
	OutcomeWhitelisted DispatchOutcome = "whitelisted"
)

// DispatchResult summarizes one dispatch round for a case
type DispatchResult struct {
	CaseUUID  string          `json:"case_uuid"`
	Outcome   DispatchOutcome `json:"outcome"`
	HandledBy string          `json:"handled_by,omitempty"`
	Skipped   []string        `json:"skipped,omitempty"`
	Duration  time.Duration   `json:"duration"`
}

// AlertStateUpdater updates alert states in the external case management
// system after a dispatch round.
type AlertStateUpdater interface {
	UpdateAlertState(ctx context.Context, alertUUID string, state core.AlertState) error
}

// CaseNoter pushes notes onto the external case record
type CaseNoter interface {
	AddCaseNote(ctx context.Context, caseNumber int, note core.CaseNote) error
}
