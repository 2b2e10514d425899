package soar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"aegis/core"
	"aegis/metrics"
)

// Dispatcher walks a case file through the registered playbooks. Playbook
// faults never escape a dispatch: panics and errors are contained per
// playbook and the chain moves on. The first playbook that handles a case
// wins; later playbooks are not consulted.
type Dispatcher struct {
	registry *Registry
	enabled  map[string]bool

	whitelist    *Whitelist
	noter        CaseNoter
	stateUpdater AlertStateUpdater
	auditSink    core.AuditSink

	maxConcurrent int
	semaphore     chan struct{}
	logger        *zap.SugaredLogger
}

// NewDispatcher creates a dispatcher over the given registry. Settings
// control per-playbook enablement; names in the settings that match no
// registered playbook are reported once and ignored.
func NewDispatcher(registry *Registry, settings []PlaybookSetting, maxConcurrent int, logger *zap.SugaredLogger) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 10
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	enabled := make(map[string]bool, len(settings))
	for _, s := range settings {
		enabled[s.Name] = s.Enabled
		if _, ok := registry.Get(s.Name); !ok {
			if _, ok := registry.GetAlertPlaybook(s.Name); !ok {
				logger.Errorf("Playbook %s is configured but not registered, ignoring", s.Name)
			}
		}
	}

	return &Dispatcher{
		registry:      registry,
		enabled:       enabled,
		maxConcurrent: maxConcurrent,
		semaphore:     make(chan struct{}, maxConcurrent),
		logger:        logger,
	}
}

// SetWhitelist attaches the indicator whitelist filter
func (d *Dispatcher) SetWhitelist(w *Whitelist) { d.whitelist = w }

// SetCaseNoter attaches the external case note sink
func (d *Dispatcher) SetCaseNoter(n CaseNoter) { d.noter = n }

// SetAlertStateUpdater attaches the external alert state sink
func (d *Dispatcher) SetAlertStateUpdater(u AlertStateUpdater) { d.stateUpdater = u }

// SetAuditSink attaches durable audit storage, propagated to every case
// file before dispatch.
func (d *Dispatcher) SetAuditSink(s core.AuditSink) { d.auditSink = s }

// isEnabled reports whether a playbook may run. Playbooks without a
// settings entry are enabled by default.
func (d *Dispatcher) isEnabled(name string) bool {
	enabled, listed := d.enabled[name]
	if !listed {
		return true
	}
	return enabled
}

// DispatchCase runs the playbook chain for one case file
func (d *Dispatcher) DispatchCase(ctx context.Context, cf *core.CaseFile) (*DispatchResult, error) {
	select {
	case d.semaphore <- struct{}{}:
		defer func() { <-d.semaphore }()
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		d.logger.Warnf("Dispatch queue full, rejecting case %s", cf.CaseUUID)
		return nil, fmt.Errorf("dispatch queue full (max: %d)", d.maxConcurrent)
	}

	started := time.Now()
	defer func() {
		metrics.DispatchDuration.Observe(time.Since(started).Seconds())
	}()

	if d.auditSink != nil {
		cf.SetAuditSink(d.auditSink)
	}

	result := &DispatchResult{CaseUUID: cf.CaseUUID, Outcome: OutcomeUnhandled}

	if d.whitelist != nil {
		whitelisted, category, err := d.whitelist.IsWhitelisted(ctx, cf.IndicatorsSet)
		if err != nil {
			d.logger.Warnf("Whitelist check failed for case %s, continuing: %v", cf.CaseUUID, err)
		} else if whitelisted {
			d.logger.Infow("Case whitelisted, skipping playbooks",
				"case_uuid", cf.CaseUUID,
				"case_title", cf.Title,
				"category", category)
			result.Outcome = OutcomeWhitelisted
			result.Duration = time.Since(started)
			return result, nil
		}
	}

	for _, name := range d.registry.Names() {
		select {
		case <-ctx.Done():
			d.logger.Warnf("Dispatch of case %s aborted before playbook %s: %v", cf.CaseUUID, name, ctx.Err())
			return nil, ctx.Err()
		default:
		}

		if !d.isEnabled(name) {
			d.logger.Warnf("Playbook %s is disabled, skipping", name)
			result.Skipped = append(result.Skipped, name)
			continue
		}
		pb, ok := d.registry.Get(name)
		if !ok {
			// Names() only returns registered playbooks, this is unreachable
			continue
		}

		canHandle, err := d.safeCanHandle(pb, cf)
		if err != nil {
			d.logger.Warnf("Playbook %s failed while probing case %s: %v", name, cf.CaseUUID, err)
			metrics.PlaybookRuns.WithLabelValues(name, "probe_failed").Inc()
			result.Skipped = append(result.Skipped, name)
			continue
		}
		if !canHandle {
			d.logger.Infof("Playbook %s cannot handle case %s, skipping", name, cf.CaseUUID)
			continue
		}

		d.logger.Infow("Playbook handling case",
			"playbook", name,
			"case_uuid", cf.CaseUUID,
			"case_title", cf.Title)

		updated, err := d.safeHandle(ctx, pb, cf)
		if err != nil {
			d.logger.Warnf("Playbook %s failed to handle case %s: %v", name, cf.CaseUUID, err)
			metrics.PlaybookRuns.WithLabelValues(name, "failed").Inc()
			result.Skipped = append(result.Skipped, name)
			continue
		}
		if updated == nil {
			d.logger.Errorf("Playbook %s returned no case file for case %s, skipping", name, cf.CaseUUID)
			metrics.PlaybookRuns.WithLabelValues(name, "invalid_result").Inc()
			result.Skipped = append(result.Skipped, name)
			continue
		}

		metrics.PlaybookRuns.WithLabelValues(name, "handled").Inc()
		result.Outcome = OutcomeHandled
		result.HandledBy = name
		cf = updated
		cf.RecordPlaybook(name)
		break
	}

	result.Duration = time.Since(started)

	if result.Outcome != OutcomeHandled {
		d.logger.Warnf("No playbook was able to handle case %s (%s)", cf.Title, cf.CaseUUID)
		return result, nil
	}

	final := core.NewAuditLog(WorkerName, FinalStage, "Case handled successfully",
		fmt.Sprintf("The case was handled successfully by playbook %s.", result.HandledBy))
	final.SetSuccessful("Case handled successfully.", "")
	final.PlaybookDone = true
	cf.UpdateAudit(ctx, final)

	d.logger.Infow("Case handled",
		"case_uuid", cf.CaseUUID,
		"case_title", cf.Title,
		"handled_by", result.HandledBy,
		"duration", result.Duration)

	d.pushAuditNote(ctx, cf)

	return result, nil
}

// DispatchAlerts asks every enabled alert playbook to correlate the batch
// into case files, then parks or closes the alerts depending on their age.
// The created case files are returned for case dispatch.
func (d *Dispatcher) DispatchAlerts(ctx context.Context, alerts []*core.Alert) []*core.CaseFile {
	var cases []*core.CaseFile

	for _, name := range d.registry.AlertPlaybookNames() {
		if !d.isEnabled(name) {
			d.logger.Warnf("Alert playbook %s is disabled, skipping", name)
			continue
		}
		pb, ok := d.registry.GetAlertPlaybook(name)
		if !ok {
			continue
		}

		created, err := d.safeHandleAlerts(ctx, pb, alerts)
		if err != nil {
			d.logger.Warnf("Alert playbook %s failed to handle the alert batch: %v", name, err)
			metrics.PlaybookRuns.WithLabelValues(name, "failed").Inc()
			continue
		}
		metrics.PlaybookRuns.WithLabelValues(name, "handled").Inc()
		cases = append(cases, created...)
	}

	d.settleAlertStates(ctx, alerts)

	if len(cases) == 0 {
		d.logger.Info("No case was created for the alert batch")
	}
	return cases
}

// settleAlertStates closes alerts past the age threshold and parks the
// rest as pending.
func (d *Dispatcher) settleAlertStates(ctx context.Context, alerts []*core.Alert) {
	for _, alert := range alerts {
		state := core.AlertStatePending
		if alert.Age() > core.CloseAlertThreshold {
			d.logger.Infof("Alert %s (%s) is older than %s, closing it", alert.Name, alert.AlertUUID, core.CloseAlertThreshold)
			state = core.AlertStateClosed
		}
		alert.State = state

		if d.stateUpdater != nil {
			if err := d.stateUpdater.UpdateAlertState(ctx, alert.AlertUUID, state); err != nil {
				d.logger.Warnf("Failed to update state of alert %s: %v", alert.AlertUUID, err)
			}
		}
	}
}

// pushAuditNote renders the audit trail and attaches it as a note on the
// external case. Failures are warnings, never dispatch errors.
func (d *Dispatcher) pushAuditNote(ctx context.Context, cf *core.CaseFile) {
	if d.noter == nil {
		return
	}
	if cf.CaseNumber == 0 {
		d.logger.Warnf("Cannot attach audit trail note: case %s has no external case number", cf.CaseUUID)
		return
	}
	note := core.CaseNote{
		Title:     "Audit Log Trail",
		Group:     "Aegis Audit",
		Content:   RenderAuditTrail(cf),
		CreatedAt: time.Now().UTC(),
	}
	if err := d.noter.AddCaseNote(ctx, cf.CaseNumber, note); err != nil {
		d.logger.Warnf("Failed to attach audit trail note to case %d: %v", cf.CaseNumber, err)
		return
	}
	d.logger.Infof("Attached audit trail note to case %d", cf.CaseNumber)
}

// safeCanHandle isolates panics in capability probes
func (d *Dispatcher) safeCanHandle(pb Playbook, cf *core.CaseFile) (canHandle bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("playbook %s panicked in CanHandle: %v", pb.Name(), r)
		}
	}()
	return pb.CanHandle(cf), nil
}

// safeHandle isolates panics in case handling
func (d *Dispatcher) safeHandle(ctx context.Context, pb Playbook, cf *core.CaseFile) (updated *core.CaseFile, err error) {
	defer func() {
		if r := recover(); r != nil {
			updated = nil
			err = fmt.Errorf("playbook %s panicked in Handle: %v", pb.Name(), r)
		}
	}()
	return pb.Handle(ctx, cf)
}

// safeHandleAlerts isolates panics in alert grouping
func (d *Dispatcher) safeHandleAlerts(ctx context.Context, pb AlertPlaybook, alerts []*core.Alert) (cases []*core.CaseFile, err error) {
	defer func() {
		if r := recover(); r != nil {
			cases = nil
			err = fmt.Errorf("alert playbook %s panicked: %v", pb.Name(), r)
		}
	}()
	return pb.HandleAlerts(ctx, alerts)
}
