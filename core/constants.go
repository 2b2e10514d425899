package core

import "time"

const (
	// MaxTimelineContexts caps the number of context entries a single case
	// timeline will accept. Inserts past the cap are dropped, not errors.
	MaxTimelineContexts = 1000

	// MaxProcessIOSize is the byte threshold beyond which captured process
	// input/output text is truncated.
	MaxProcessIOSize = 100000

	// CloseAlertThreshold is the age past which an unhandled alert is closed
	// instead of being parked as pending after a dispatch round.
	CloseAlertThreshold = 24 * time.Hour
)

// AlertState represents the lifecycle state of an alert
type AlertState string

const (
	// AlertStateNew indicates an alert that has not been picked up yet
	AlertStateNew AlertState = "new"
	// AlertStatePending indicates an alert waiting for case correlation
	AlertStatePending AlertState = "pending"
	// AlertStateResolved indicates an alert resolved by a playbook or analyst
	AlertStateResolved AlertState = "resolved"
	// AlertStateClosed indicates an alert aged out or closed without resolution
	AlertStateClosed AlertState = "closed"
)

// AllAlertStates returns all valid alert states for validation
var AllAlertStates = []AlertState{
	AlertStateNew, AlertStatePending, AlertStateResolved, AlertStateClosed,
}

// String returns the string representation
func (s AlertState) String() string {
	return string(s)
}

// IsValid checks if the alert state is valid
func (s AlertState) IsValid() bool {
	for _, valid := range AllAlertStates {
		if s == valid {
			return true
		}
	}
	return false
}

// ProcedureStep tracks where a case is in the incident response procedure
type ProcedureStep string

const (
	ProcedureStepInitial           ProcedureStep = "initial"
	ProcedureStepGatherInformation ProcedureStep = "gather_information"
	ProcedureStepAnalyze           ProcedureStep = "analyze"
	ProcedureStepContainment       ProcedureStep = "containment"
	ProcedureStepEradication       ProcedureStep = "eradication"
	ProcedureStepClosure           ProcedureStep = "closure"
)

// AllProcedureSteps returns all valid procedure steps
var AllProcedureSteps = []ProcedureStep{
	ProcedureStepInitial, ProcedureStepGatherInformation, ProcedureStepAnalyze,
	ProcedureStepContainment, ProcedureStepEradication, ProcedureStepClosure,
}

// String returns the string representation
func (p ProcedureStep) String() string {
	return string(p)
}

// IsValid checks if the procedure step is valid
func (p ProcedureStep) IsValid() bool {
	for _, valid := range AllProcedureSteps {
		if p == valid {
			return true
		}
	}
	return false
}

// CaseStatus represents whether a case has been worked to completion
type CaseStatus string

const (
	CaseStatusUnresolved CaseStatus = "unresolved"
	CaseStatusResolved   CaseStatus = "resolved"
)

// AllCaseStatuses returns all valid case statuses
var AllCaseStatuses = []CaseStatus{CaseStatusUnresolved, CaseStatusResolved}

// String returns the string representation
func (s CaseStatus) String() string {
	return string(s)
}

// IsValid checks if the case status is valid
func (s CaseStatus) IsValid() bool {
	for _, valid := range AllCaseStatuses {
		if s == valid {
			return true
		}
	}
	return false
}

// ThreatType classifies how well the threat behind a case is understood
type ThreatType string

const (
	ThreatTypeUndetermined ThreatType = "undetermined"
	ThreatTypeUnknown      ThreatType = "unknown"
	ThreatTypeKnown        ThreatType = "known"
)

// AllThreatTypes returns all valid threat types
var AllThreatTypes = []ThreatType{
	ThreatTypeUndetermined, ThreatTypeUnknown, ThreatTypeKnown,
}

// String returns the string representation
func (t ThreatType) String() string {
	return string(t)
}

// IsValid checks if the threat type is valid
func (t ThreatType) IsValid() bool {
	for _, valid := range AllThreatTypes {
		if t == valid {
			return true
		}
	}
	return false
}

// ThreatLevel grades the assessed severity of the threat behind a case
type ThreatLevel string

const (
	ThreatLevelUndetermined ThreatLevel = "undetermined"
	ThreatLevelNegligible   ThreatLevel = "negligible"
	ThreatLevelLow          ThreatLevel = "low"
	ThreatLevelMedium       ThreatLevel = "medium"
	ThreatLevelHigh         ThreatLevel = "high"
	ThreatLevelCritical     ThreatLevel = "critical"
)

// AllThreatLevels returns all valid threat levels
var AllThreatLevels = []ThreatLevel{
	ThreatLevelUndetermined, ThreatLevelNegligible, ThreatLevelLow,
	ThreatLevelMedium, ThreatLevelHigh, ThreatLevelCritical,
}

// String returns the string representation
func (l ThreatLevel) String() string {
	return string(l)
}

// IsValid checks if the threat level is valid
func (l ThreatLevel) IsValid() bool {
	for _, valid := range AllThreatLevels {
		if l == valid {
			return true
		}
	}
	return false
}

// CaseResult is the final verdict of a worked case
type CaseResult string

const (
	CaseResultUndetermined  CaseResult = "undetermined"
	CaseResultFalsePositive CaseResult = "false_positive"
	CaseResultNonIssue      CaseResult = "non_issue"
	CaseResultAlert         CaseResult = "alert"
	CaseResultIncident      CaseResult = "incident"
	CaseResultBreach        CaseResult = "breach"
)

// AllCaseResults returns all valid case results
var AllCaseResults = []CaseResult{
	CaseResultUndetermined, CaseResultFalsePositive, CaseResultNonIssue,
	CaseResultAlert, CaseResultIncident, CaseResultBreach,
}

// String returns the string representation
func (r CaseResult) String() string {
	return string(r)
}

// IsValid checks if the case result is valid
func (r CaseResult) IsValid() bool {
	for _, valid := range AllCaseResults {
		if r == valid {
			return true
		}
	}
	return false
}

// FlowDirection classifies a network flow by the locality of its endpoints
type FlowDirection string

const (
	// FlowDirectionL2L is local source to local destination
	FlowDirectionL2L FlowDirection = "L2L"
	// FlowDirectionL2R is local source to remote destination
	FlowDirectionL2R FlowDirection = "L2R"
	// FlowDirectionR2L is remote source to local destination
	FlowDirectionR2L FlowDirection = "R2L"
	// FlowDirectionR2R is remote source to remote destination
	FlowDirectionR2R FlowDirection = "R2R"
)

// AllFlowDirections returns all valid flow directions
var AllFlowDirections = []FlowDirection{
	FlowDirectionL2L, FlowDirectionL2R, FlowDirectionR2L, FlowDirectionR2R,
}

// String returns the string representation
func (d FlowDirection) String() string {
	return string(d)
}

// IsValid checks if the flow direction is valid
func (d FlowDirection) IsValid() bool {
	for _, valid := range AllFlowDirections {
		if d == valid {
			return true
		}
	}
	return false
}

// IndicatorCategory buckets extracted indicators for whitelisting and lookups
type IndicatorCategory string

const (
	IndicatorIP       IndicatorCategory = "ip"
	IndicatorDomain   IndicatorCategory = "domain"
	IndicatorURL      IndicatorCategory = "url"
	IndicatorHash     IndicatorCategory = "hash"
	IndicatorEmail    IndicatorCategory = "email"
	IndicatorCountry  IndicatorCategory = "country"
	IndicatorRegistry IndicatorCategory = "registry"
	IndicatorOther    IndicatorCategory = "other"
)

// AllIndicatorCategories returns all valid indicator categories
var AllIndicatorCategories = []IndicatorCategory{
	IndicatorIP, IndicatorDomain, IndicatorURL, IndicatorHash,
	IndicatorEmail, IndicatorCountry, IndicatorRegistry, IndicatorOther,
}

// String returns the string representation
func (c IndicatorCategory) String() string {
	return string(c)
}

// IsValid checks if the indicator category is valid
func (c IndicatorCategory) IsValid() bool {
	for _, valid := range AllIndicatorCategories {
		if c == valid {
			return true
		}
	}
	return false
}
