package soar

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/core"
	"aegis/storage"
)

func TestWhitelist_FirstMatchWins(t *testing.T) {
	store := storage.NewMemoryWhitelistStore()
	store.SetEntries(core.IndicatorIP, []string{"10.0.0.1"})
	store.SetEntries(core.IndicatorDomain, []string{"good.example.com"})

	w := NewWhitelist(store, nil)

	set := core.NewIndicatorSet()
	set.Add(core.IndicatorIP, "10.0.0.1")
	set.Add(core.IndicatorDomain, "good.example.com")

	hit, category, err := w.IsWhitelisted(context.Background(), set)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, core.IndicatorIP, category)
}

func TestWhitelist_NoMatch(t *testing.T) {
	store := storage.NewMemoryWhitelistStore()
	store.SetEntries(core.IndicatorIP, []string{"10.0.0.1"})

	w := NewWhitelist(store, nil)

	set := core.NewIndicatorSet()
	set.Add(core.IndicatorIP, "203.0.113.9")
	set.Add(core.IndicatorHash, "d41d8cd98f00b204e9800998ecf8427e")

	hit, category, err := w.IsWhitelisted(context.Background(), set)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, category)
}

func TestWhitelist_EmptySetNeverMatches(t *testing.T) {
	store := storage.NewMemoryWhitelistStore()
	store.SetEntries(core.IndicatorIP, []string{"10.0.0.1"})
	w := NewWhitelist(store, nil)

	hit, _, err := w.IsWhitelisted(context.Background(), core.NewIndicatorSet())
	require.NoError(t, err)
	assert.False(t, hit)

	hit, _, err = w.IsWhitelisted(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestWhitelist_WildcardDomainsCollapse(t *testing.T) {
	store := storage.NewMemoryWhitelistStore()
	store.SetEntries(core.IndicatorDomain, []string{"*.example.com"})

	w := NewWhitelist(store, nil)

	set := core.NewIndicatorSet()
	set.Add(core.IndicatorDomain, "example.com")

	hit, category, err := w.IsWhitelisted(context.Background(), set)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, core.IndicatorDomain, category)
}

func TestWhitelist_StoreErrorPropagates(t *testing.T) {
	w := NewWhitelist(failingWhitelistStore{}, nil)

	set := core.NewIndicatorSet()
	set.Add(core.IndicatorIP, "10.0.0.1")

	_, _, err := w.IsWhitelisted(context.Background(), set)
	assert.Error(t, err)
}

func TestWhitelist_IsCaseWhitelisted(t *testing.T) {
	store := storage.NewMemoryWhitelistStore()
	store.SetEntries(core.IndicatorIP, []string{"203.0.113.9"})

	w := NewWhitelist(store, nil)

	hit, _, err := w.IsCaseWhitelisted(context.Background(), newTestCase(t))
	require.NoError(t, err)
	assert.True(t, hit)

	hit, _, err = w.IsCaseWhitelisted(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRenderAuditTrail_ColorsByRowState(t *testing.T) {
	cf := core.NewCaseFile("render", nil, nil)

	warned := core.NewAuditLog("PB_TEST", 1, "warned stage", "")
	warned.SetWarning("partial data")
	cf.UpdateAudit(context.Background(), warned)

	failed := core.NewAuditLog("PB_TEST", 2, "failed stage", "")
	failed.SetError("lookup failed", errors.New("timeout"))
	cf.UpdateAudit(context.Background(), failed)

	html := RenderAuditTrail(cf)
	assert.Contains(t, html, "<p style='color:green'>")
	assert.Contains(t, html, "<p style='color:orange'>")
	assert.Contains(t, html, "<p style='color:red'>")
	assert.Contains(t, html, "<br>")
	assert.NotContains(t, html, "\n</p>")
}
