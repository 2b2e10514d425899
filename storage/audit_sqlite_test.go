package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"aegis/core"
)

func newTestAuditStore(t *testing.T) *AuditStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "audit_test.db")
	db, err := NewSQLite(dbPath, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewAuditStore(db)
}

func TestAuditStore_AppendAndReadBack(t *testing.T) {
	store := newTestAuditStore(t)
	ctx := context.Background()

	row := core.NewAuditLog("PB_TEST", 1, "Gather information", "collect context")
	row.SetWarning("one engine slow")
	row.SetSuccessful("collected", "CASE-42")
	row.PlaybookDone = true
	require.NoError(t, store.AppendAudit(ctx, "case-uuid-1", row))

	trail, err := store.AuditTrail(ctx, "case-uuid-1")
	require.NoError(t, err)
	require.Len(t, trail, 1)

	got := trail[0]
	assert.Equal(t, "PB_TEST", got.Playbook)
	assert.Equal(t, 1, got.Stage)
	assert.Equal(t, "Gather information", got.Title)
	assert.Equal(t, "collected", got.ResultMessage)
	assert.Equal(t, []string{"one engine slow"}, got.Warnings)
	assert.Equal(t, "CASE-42", got.CaseRef)
	assert.True(t, got.StageDone)
	assert.True(t, got.PlaybookDone)
	assert.False(t, got.RetryRequested)
	assert.False(t, got.ResultTime.IsZero())
}

func TestAuditStore_AppendOnlyKeepsHistory(t *testing.T) {
	store := newTestAuditStore(t)
	ctx := context.Background()

	first := core.NewAuditLog("PB_TEST", 1, "first attempt", "")
	first.SetError("failed", errors.New("boom"))
	require.NoError(t, store.AppendAudit(ctx, "case-uuid-1", first))

	second := core.NewAuditLog("PB_TEST", 1, "second attempt", "")
	second.SetSuccessful("recovered", "")
	require.NoError(t, store.AppendAudit(ctx, "case-uuid-1", second))

	// Unlike the in-memory trail, the store keeps both attempts
	trail, err := store.AuditTrail(ctx, "case-uuid-1")
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.True(t, trail[0].HadErrors)
	assert.Equal(t, "boom", trail[0].Exception)
	assert.True(t, trail[1].StageDone)
}

func TestAuditStore_PendingRowHasNoResultTime(t *testing.T) {
	store := newTestAuditStore(t)
	ctx := context.Background()

	row := core.NewAuditLog("PB_TEST", 0, "starting", "")
	require.NoError(t, store.AppendAudit(ctx, "case-uuid-1", row))

	trail, err := store.AuditTrail(ctx, "case-uuid-1")
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.True(t, trail[0].ResultTime.IsZero())
	assert.Empty(t, trail[0].Warnings)
}

func TestAuditStore_TrailsAreSeparatedByCase(t *testing.T) {
	store := newTestAuditStore(t)
	ctx := context.Background()

	rowA := core.NewAuditLog("PB_A", 1, "case a", "")
	rowB := core.NewAuditLog("PB_B", 1, "case b", "")
	require.NoError(t, store.AppendAudit(ctx, "case-a", rowA))
	require.NoError(t, store.AppendAudit(ctx, "case-b", rowB))

	trailA, err := store.AuditTrail(ctx, "case-a")
	require.NoError(t, err)
	require.Len(t, trailA, 1)
	assert.Equal(t, "PB_A", trailA[0].Playbook)

	empty, err := store.AuditTrail(ctx, "case-c")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLite_RejectsPathTraversal(t *testing.T) {
	_, err := NewSQLite("../outside.db", zaptest.NewLogger(t).Sugar())
	assert.Error(t, err)

	_, err = NewSQLite("", zaptest.NewLogger(t).Sugar())
	assert.Error(t, err)
}

func TestSQLite_InMemoryDatabase(t *testing.T) {
	db, err := NewSQLite(":memory:", zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer db.Close()

	store := NewAuditStore(db)
	ctx := context.Background()

	row := core.NewAuditLog("PB_TEST", 1, "in memory", "")
	row.SetSuccessful("ok", "")
	require.NoError(t, store.AppendAudit(ctx, "case-mem", row))

	trail, err := store.AuditTrail(ctx, "case-mem")
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.WithinDuration(t, time.Now().UTC(), trail[0].StartTime, time.Minute)
}
