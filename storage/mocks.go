package storage

import (
	"context"
	"sync"

	"aegis/core"
)

// MemoryAuditStore is an in-memory core.AuditSink for tests and for running
// without SQLite.
type MemoryAuditStore struct {
	mu     sync.Mutex
	trails map[string][]core.AuditLog
}

// NewMemoryAuditStore creates an empty in-memory audit store
func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{trails: make(map[string][]core.AuditLog)}
}

// AppendAudit records one audit update
func (s *MemoryAuditStore) AppendAudit(_ context.Context, caseUUID string, entry core.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trails[caseUUID] = append(s.trails[caseUUID], entry)
	return nil
}

// AuditTrail returns the recorded updates for a case
func (s *MemoryAuditStore) AuditTrail(_ context.Context, caseUUID string) ([]core.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trail := make([]core.AuditLog, len(s.trails[caseUUID]))
	copy(trail, s.trails[caseUUID])
	return trail, nil
}

var _ core.AuditSink = (*MemoryAuditStore)(nil)

// MemoryCaseStore is an in-memory stand-in for the external case management
// system.
type MemoryCaseStore struct {
	mu     sync.Mutex
	cases  map[string]*core.CaseFile
	alerts map[string]*core.Alert
	notes  map[int][]core.CaseNote
}

// NewMemoryCaseStore creates an empty in-memory case store
func NewMemoryCaseStore() *MemoryCaseStore {
	return &MemoryCaseStore{
		cases:  make(map[string]*core.CaseFile),
		alerts: make(map[string]*core.Alert),
		notes:  make(map[int][]core.CaseNote),
	}
}

// SaveCase upserts a case file
func (s *MemoryCaseStore) SaveCase(_ context.Context, cf *core.CaseFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[cf.CaseUUID] = cf
	return nil
}

// GetCase fetches a case file by UUID
func (s *MemoryCaseStore) GetCase(_ context.Context, caseUUID string) (*core.CaseFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cf, ok := s.cases[caseUUID]
	if !ok {
		return nil, ErrNotFound
	}
	return cf, nil
}

// AddCaseNote records a note against an external case number
func (s *MemoryCaseStore) AddCaseNote(_ context.Context, caseNumber int, note core.CaseNote) error {
	if caseNumber == 0 {
		return ErrNoCaseNumber
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[caseNumber] = append(s.notes[caseNumber], note)
	return nil
}

// Notes returns the notes recorded for a case number
func (s *MemoryCaseStore) Notes(caseNumber int) []core.CaseNote {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes := make([]core.CaseNote, len(s.notes[caseNumber]))
	copy(notes, s.notes[caseNumber])
	return notes
}

// SaveAlert upserts an alert
func (s *MemoryCaseStore) SaveAlert(_ context.Context, alert *core.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[alert.AlertUUID] = alert
	return nil
}

// OpenAlerts returns alerts in state new or pending
func (s *MemoryCaseStore) OpenAlerts(_ context.Context) ([]*core.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*core.Alert
	for _, a := range s.alerts {
		if a.State == core.AlertStateNew || a.State == core.AlertStatePending {
			out = append(out, a)
		}
	}
	return out, nil
}

// UpdateAlertState sets the state of one alert
func (s *MemoryCaseStore) UpdateAlertState(_ context.Context, alertUUID string, state core.AlertState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	alert, ok := s.alerts[alertUUID]
	if !ok {
		return ErrNotFound
	}
	alert.State = state
	return nil
}

// MemoryWhitelistStore is an in-memory whitelist store for tests
type MemoryWhitelistStore struct {
	mu      sync.RWMutex
	entries map[core.IndicatorCategory][]string
}

// NewMemoryWhitelistStore creates an empty in-memory whitelist store
func NewMemoryWhitelistStore() *MemoryWhitelistStore {
	return &MemoryWhitelistStore{entries: make(map[core.IndicatorCategory][]string)}
}

// SetEntries replaces the whitelist of one category
func (s *MemoryWhitelistStore) SetEntries(category core.IndicatorCategory, entries []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := core.NewIndicatorSet()
	set.AddAll(category, entries...)
	s.entries[category] = set.Values(category)
}

// Entries returns the whitelist of one category
func (s *MemoryWhitelistStore) Entries(_ context.Context, category core.IndicatorCategory) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]string, len(s.entries[category]))
	copy(entries, s.entries[category])
	return entries, nil
}
