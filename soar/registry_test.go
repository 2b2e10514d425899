package soar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/core"
)

// mockPlaybook is a configurable case playbook for tests
type mockPlaybook struct {
	name        string
	canHandleFn func(cf *core.CaseFile) bool
	handleFn    func(ctx context.Context, cf *core.CaseFile) (*core.CaseFile, error)
}

func (m *mockPlaybook) Name() string { return m.name }

func (m *mockPlaybook) CanHandle(cf *core.CaseFile) bool {
	if m.canHandleFn != nil {
		return m.canHandleFn(cf)
	}
	return true
}

func (m *mockPlaybook) Handle(ctx context.Context, cf *core.CaseFile) (*core.CaseFile, error) {
	if m.handleFn != nil {
		return m.handleFn(ctx, cf)
	}
	row := core.NewAuditLog(m.name, 1, "handled", "")
	row.SetSuccessful("done", "")
	cf.UpdateAudit(ctx, row)
	return cf, nil
}

// mockAlertPlaybook is a configurable alert playbook for tests
type mockAlertPlaybook struct {
	name     string
	handleFn func(ctx context.Context, alerts []*core.Alert) ([]*core.CaseFile, error)
}

func (m *mockAlertPlaybook) Name() string { return m.name }

func (m *mockAlertPlaybook) HandleAlerts(ctx context.Context, alerts []*core.Alert) ([]*core.CaseFile, error) {
	if m.handleFn != nil {
		return m.handleFn(ctx, alerts)
	}
	return nil, nil
}

func TestRegistry_RegistrationOrderPreserved(t *testing.T) {
	r := NewRegistry(nil)

	require.NoError(t, r.Register(&mockPlaybook{name: "PB_C"}))
	require.NoError(t, r.Register(&mockPlaybook{name: "PB_A"}))
	require.NoError(t, r.Register(&mockPlaybook{name: "PB_B"}))

	assert.Equal(t, []string{"PB_C", "PB_A", "PB_B"}, r.Names())
}

func TestRegistry_DuplicateNameRejected(t *testing.T) {
	r := NewRegistry(nil)

	require.NoError(t, r.Register(&mockPlaybook{name: "PB_A"}))
	assert.Error(t, r.Register(&mockPlaybook{name: "PB_A"}))
	assert.Error(t, r.Register(&mockPlaybook{name: ""}))
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry(nil)
	pb := &mockPlaybook{name: "PB_A"}
	require.NoError(t, r.Register(pb))

	got, ok := r.Get("PB_A")
	assert.True(t, ok)
	assert.Equal(t, pb, got)

	_, ok = r.Get("PB_MISSING")
	assert.False(t, ok)
}

func TestRegistry_AlertPlaybooksAreSeparate(t *testing.T) {
	r := NewRegistry(nil)

	require.NoError(t, r.Register(&mockPlaybook{name: "PB_SHARED"}))
	require.NoError(t, r.RegisterAlertPlaybook(&mockAlertPlaybook{name: "PB_SHARED"}))
	assert.Error(t, r.RegisterAlertPlaybook(&mockAlertPlaybook{name: "PB_SHARED"}))

	assert.Equal(t, []string{"PB_SHARED"}, r.Names())
	assert.Equal(t, []string{"PB_SHARED"}, r.AlertPlaybookNames())
}
