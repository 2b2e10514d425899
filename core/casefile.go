package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aegis/metrics"
)

// caseCreatedPlaybook is the pseudo playbook name of the initial audit row
const caseCreatedPlaybook = "none"

// AuditSink receives every audit trail update for durable storage. A nil
// sink on a case file disables persistence; persistence failures are logged
// and do not affect the in-memory trail.
type AuditSink interface {
	AppendAudit(ctx context.Context, caseUUID string, entry AuditLog) error
}

// CaseNote is a free-form note attached to a case, grouped for display in
// the external case management system.
type CaseNote struct {
	Title     string    `json:"title"`
	Group     string    `json:"group,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CaseFile correlates one or more alerts into a workable incident case:
// a merged context timeline, the aggregated indicator set, classification
// fields and the audit trail of playbook work performed on it.
type CaseFile struct {
	CaseUUID string   `json:"uuid"`
	Title    string   `json:"title"`
	Alerts   []*Alert `json:"alerts"`

	Timeline      *Timeline     `json:"-"`
	IndicatorsSet *IndicatorSet `json:"indicators"`

	ProcedureStep    ProcedureStep `json:"procedure_step"`
	Status           CaseStatus    `json:"status"`
	ThreatType       ThreatType    `json:"threat_type"`
	ThreatLevel      ThreatLevel   `json:"threat_level"`
	Result           CaseResult    `json:"result"`
	ResultConfidence int           `json:"result_confidence"` // 0-100

	Notes      []CaseNote `json:"notes,omitempty"`
	Playbooks  []string   `json:"playbooks,omitempty"`
	HandledBy  []string   `json:"handled_by,omitempty"`
	ToRetry    []string   `json:"to_retry,omitempty"`
	AuditTrail []AuditLog `json:"audit_trail"`

	// CaseNumber is the identifier in the external case management system,
	// zero until the case has been pushed there.
	CaseNumber int `json:"case_number,omitempty"`

	logger    *zap.SugaredLogger
	auditSink AuditSink
}

// NewCaseFile creates a case file from the given alerts. All alert contexts
// are merged into the timeline and indicator set, and the trail starts with
// a synthetic stage-0 row marking case creation.
func NewCaseFile(title string, alerts []*Alert, logger *zap.SugaredLogger) *CaseFile {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	cf := &CaseFile{
		CaseUUID:      uuid.NewString(),
		Title:         title,
		Alerts:        alerts,
		Timeline:      NewTimeline(logger),
		IndicatorsSet: NewIndicatorSet(),
		ProcedureStep: ProcedureStepInitial,
		Status:        CaseStatusUnresolved,
		ThreatType:    ThreatTypeUndetermined,
		ThreatLevel:   ThreatLevelUndetermined,
		Result:        CaseResultUndetermined,
		logger:        logger,
	}

	for _, alert := range alerts {
		for _, c := range alert.Contexts() {
			cf.AddContext(c)
		}
	}

	initial := NewAuditLog(caseCreatedPlaybook, 0, "Case created",
		fmt.Sprintf("Case file created from %d alert(s)", len(alerts)))
	initial.SetSuccessful("Case file initialized", "")
	cf.AuditTrail = append(cf.AuditTrail, initial)

	return cf
}

// SetAuditSink attaches durable audit storage to the case file
func (cf *CaseFile) SetAuditSink(sink AuditSink) {
	cf.auditSink = sink
}

// AddContext validates a context and merges it into the timeline and the
// indicator set. Invalid contexts are rejected with an error; a full
// timeline drops the entry without error.
func (cf *CaseFile) AddContext(c Context) error {
	if c == nil {
		return fmt.Errorf("nil context")
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("rejecting context: %w", err)
	}
	if cf.Timeline.Insert(c) {
		metrics.ContextsAdded.WithLabelValues(contextTypeName(c)).Inc()
	}
	cf.IndicatorsSet.Merge(c.Indicators())
	return nil
}

// AddAlert attaches a further alert and merges its contexts
func (cf *CaseFile) AddAlert(alert *Alert) error {
	if alert == nil {
		return fmt.Errorf("nil alert")
	}
	if err := alert.Validate(); err != nil {
		return err
	}
	cf.Alerts = append(cf.Alerts, alert)
	for _, c := range alert.Contexts() {
		if err := cf.AddContext(c); err != nil {
			cf.logger.Warnf("Skipping context of alert %s: %v", alert.Name, err)
		}
	}
	return nil
}

// RecordPlaybook appends a playbook that ran against the case to the
// executed-playbook list.
func (cf *CaseFile) RecordPlaybook(name string) {
	cf.Playbooks = appendUnique(cf.Playbooks, name)
}

// AddNote appends a note to the case
func (cf *CaseFile) AddNote(title, group, content string) {
	cf.Notes = append(cf.Notes, CaseNote{
		Title:     title,
		Group:     group,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
}

// UpdateAudit is the only mutation path of the audit trail. The row
// matching (playbook, stage) is replaced in place, otherwise the entry is
// appended. A row signalling playbook completion records the playbook in
// HandledBy; a retry request records it in ToRetry. The entry is forwarded
// to the audit sink when one is attached.
func (cf *CaseFile) UpdateAudit(ctx context.Context, entry AuditLog) {
	replaced := false
	for i := range cf.AuditTrail {
		if cf.AuditTrail[i].Matches(entry) {
			cf.AuditTrail[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		cf.AuditTrail = append(cf.AuditTrail, entry)
	}

	if entry.PlaybookDone {
		cf.HandledBy = appendUnique(cf.HandledBy, entry.Playbook)
	}
	if entry.RetryRequested {
		cf.ToRetry = appendUnique(cf.ToRetry, entry.Playbook)
	} else {
		cf.ToRetry = removeString(cf.ToRetry, entry.Playbook)
	}

	metrics.AuditRowsRecorded.Inc()

	if cf.auditSink != nil {
		if err := cf.auditSink.AppendAudit(ctx, cf.CaseUUID, entry); err != nil {
			cf.logger.Errorf("Failed to persist audit row for case %s: %v", cf.CaseUUID, err)
		}
	}
}

// TriesByPlaybook counts how often a playbook started over on this case,
// i.e. its stage-0 rows in the trail.
func (cf *CaseFile) TriesByPlaybook(playbook string) int {
	tries := 0
	for _, row := range cf.AuditTrail {
		if row.Playbook == playbook && row.Stage == 0 {
			tries++
		}
	}
	return tries
}

// WasHandledBy reports whether the playbook ran to completion on this case
func (cf *CaseFile) WasHandledBy(playbook string) bool {
	for _, name := range cf.HandledBy {
		if name == playbook {
			return true
		}
	}
	return false
}

// Validate checks the classification fields and confidence range
func (cf *CaseFile) Validate() error {
	if cf.Title == "" {
		return fmt.Errorf("case %s is missing a title", cf.CaseUUID)
	}
	if !cf.ProcedureStep.IsValid() {
		return fmt.Errorf("case %s has invalid procedure step %q", cf.Title, cf.ProcedureStep)
	}
	if !cf.Status.IsValid() {
		return fmt.Errorf("case %s has invalid status %q", cf.Title, cf.Status)
	}
	if !cf.ThreatType.IsValid() {
		return fmt.Errorf("case %s has invalid threat type %q", cf.Title, cf.ThreatType)
	}
	if !cf.ThreatLevel.IsValid() {
		return fmt.Errorf("case %s has invalid threat level %q", cf.Title, cf.ThreatLevel)
	}
	if !cf.Result.IsValid() {
		return fmt.Errorf("case %s has invalid result %q", cf.Title, cf.Result)
	}
	if cf.ResultConfidence < 0 || cf.ResultConfidence > 100 {
		return fmt.Errorf("case %s has result confidence %d out of range 0-100", cf.Title, cf.ResultConfidence)
	}
	return nil
}

func (cf *CaseFile) String() string {
	return fmt.Sprintf("CaseFile(%s, %d alerts, step=%s, result=%s)",
		cf.Title, len(cf.Alerts), cf.ProcedureStep, cf.Result)
}

// contextTypeName returns a short metric label for a context value
func contextTypeName(c Context) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", c), "*core.")
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

func removeString(list []string, value string) []string {
	out := list[:0]
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
