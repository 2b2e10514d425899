package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"aegis/core"
	"aegis/metrics"
)

// AuditStore persists one row per audit trail update. Unlike the in-memory
// trail on a case file, the store is append-only: replaced rows stay in the
// history.
type AuditStore struct {
	db *SQLite
}

// NewAuditStore creates an audit store over an open SQLite database
func NewAuditStore(db *SQLite) *AuditStore {
	return &AuditStore{db: db}
}

// AppendAudit records one audit trail update for a case
func (s *AuditStore) AppendAudit(ctx context.Context, caseUUID string, entry core.AuditLog) error {
	warnings, err := json.Marshal(entry.Warnings)
	if err != nil {
		metrics.AuditStoreFailures.Inc()
		return fmt.Errorf("failed to encode warnings: %w", err)
	}

	var resultTime any
	if !entry.ResultTime.IsZero() {
		resultTime = entry.ResultTime
	}

	_, err = s.db.WriteDB.ExecContext(ctx, `
		INSERT INTO audit_log (
			case_uuid, playbook, stage, title, description,
			start_time, result_time, result_message, warnings, exception,
			had_errors, had_warnings, stage_done, playbook_done, retry_requested, case_ref
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		caseUUID, entry.Playbook, entry.Stage, entry.Title, entry.Description,
		entry.StartTime, resultTime, entry.ResultMessage, string(warnings), entry.Exception,
		entry.HadErrors, entry.HadWarnings, entry.StageDone, entry.PlaybookDone, entry.RetryRequested, entry.CaseRef,
	)
	if err != nil {
		metrics.AuditStoreFailures.Inc()
		return fmt.Errorf("failed to insert audit row for case %s: %w", caseUUID, err)
	}
	return nil
}

// AuditTrail returns the recorded updates for a case in insertion order
func (s *AuditStore) AuditTrail(ctx context.Context, caseUUID string) ([]core.AuditLog, error) {
	rows, err := s.db.ReadDB.QueryContext(ctx, `
		SELECT playbook, stage, title, description,
		       start_time, result_time, result_message, warnings, exception,
		       had_errors, had_warnings, stage_done, playbook_done, retry_requested, case_ref
		FROM audit_log
		WHERE case_uuid = ?
		ORDER BY id ASC`, caseUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit trail for case %s: %w", caseUUID, err)
	}
	defer rows.Close()

	var trail []core.AuditLog
	for rows.Next() {
		var (
			entry      core.AuditLog
			resultTime sql.NullTime
			warnings   string
		)
		if err := rows.Scan(
			&entry.Playbook, &entry.Stage, &entry.Title, &entry.Description,
			&entry.StartTime, &resultTime, &entry.ResultMessage, &warnings, &entry.Exception,
			&entry.HadErrors, &entry.HadWarnings, &entry.StageDone, &entry.PlaybookDone, &entry.RetryRequested, &entry.CaseRef,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		if resultTime.Valid {
			entry.ResultTime = resultTime.Time
		}
		if warnings != "" && warnings != "null" {
			if err := json.Unmarshal([]byte(warnings), &entry.Warnings); err != nil {
				return nil, fmt.Errorf("failed to decode warnings: %w", err)
			}
		}
		trail = append(trail, entry)
	}
	return trail, rows.Err()
}

var _ core.AuditSink = (*AuditStore)(nil)
