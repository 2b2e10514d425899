package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextThreatIntel_DeriveScore(t *testing.T) {
	ti := NewContextThreatIntel(IndicatorHash, strings.Repeat("a", 64))
	ti.Detections = []ThreatIntelDetection{
		{Engine: "engine1", IsKnown: true, IsHit: true},
		{Engine: "engine2", IsKnown: true, HitType: HitTypeSuspicious},
		{Engine: "engine3", IsKnown: true, HitType: HitTypeMalicious},
		{Engine: "engine4", IsKnown: true},
		{Engine: "engine5"},
	}

	require.NoError(t, ti.DeriveScore())

	require.NotNil(t, ti.Score)
	assert.True(t, ti.Score.Derived)
	assert.Equal(t, 5, ti.Score.Total)
	assert.Equal(t, 3, ti.Score.Hits)
	assert.Equal(t, 1, ti.Score.HitsSuspicious)
	assert.Equal(t, 1, ti.Score.HitsMalicious)
	assert.Equal(t, 4, ti.Score.Known)
	assert.Equal(t, 1, ti.Score.Unknown)
	assert.NoError(t, ti.Validate())
}

func TestContextThreatIntel_DeriveScoreCountsHitTypes(t *testing.T) {
	ti := NewContextThreatIntel(IndicatorDomain, "evil.example.com")
	ti.Detections = []ThreatIntelDetection{
		{Engine: "engine1", IsKnown: true, IsHit: true, HitType: HitTypeMalicious},
		{Engine: "engine2", IsKnown: true, IsHit: true, HitType: HitTypeMalicious},
		{Engine: "engine3", IsKnown: true},
	}

	require.NoError(t, ti.DeriveScore())

	assert.Equal(t, 2, ti.Score.Hits)
	assert.Equal(t, 2, ti.Score.HitsMalicious)
	assert.Equal(t, 0, ti.Score.HitsSuspicious)
	assert.Equal(t, 3, ti.Score.Known)
}

func TestContextThreatIntel_SetScore(t *testing.T) {
	ti := NewContextThreatIntel(IndicatorIP, "203.0.113.9")
	require.NoError(t, ti.SetScore(3, 1, 2, 50, 60))

	require.NotNil(t, ti.Score)
	assert.False(t, ti.Score.Derived)
	assert.Equal(t, 1, ti.Score.HitsSuspicious)
	assert.Equal(t, 2, ti.Score.HitsMalicious)
	assert.Equal(t, 10, ti.Score.Unknown)
}

func TestContextThreatIntel_SetScoreRejectsInconsistency(t *testing.T) {
	ti := NewContextThreatIntel(IndicatorIP, "203.0.113.9")

	assert.Error(t, ti.SetScore(5, 0, 0, 3, 4))  // hits > total
	assert.Error(t, ti.SetScore(1, 0, 0, 9, 4))  // known > total
	assert.Error(t, ti.SetScore(-1, 0, 0, 0, 4)) // negative hits
	assert.Error(t, ti.SetScore(2, 3, 0, 2, 4))  // suspicious > hits
	assert.Error(t, ti.SetScore(2, 0, 3, 2, 4))  // malicious > hits
	assert.Nil(t, ti.Score)
}

func TestContextThreatIntel_ScoreModesAreExclusive(t *testing.T) {
	ti := NewContextThreatIntel(IndicatorIP, "203.0.113.9")
	require.NoError(t, ti.SetScore(1, 0, 1, 2, 3))

	assert.Error(t, ti.DeriveScore())
	assert.Error(t, ti.SetScore(1, 0, 1, 2, 3))

	derived := NewContextThreatIntel(IndicatorIP, "203.0.113.9")
	require.NoError(t, derived.DeriveScore())
	assert.Error(t, derived.SetScore(1, 0, 1, 2, 3))
}

func TestContextThreatIntel_Validate(t *testing.T) {
	ti := NewContextThreatIntel(IndicatorIP, "203.0.113.9")
	require.NoError(t, ti.Validate())

	assert.Error(t, NewContextThreatIntel(IndicatorIP, "").Validate())
	assert.Error(t, NewContextThreatIntel(IndicatorCategory("bogus"), "x").Validate())

	ti.Score = &ThreatIntelScore{Hits: 2, Known: 1, Unknown: 5, Total: 3}
	assert.Error(t, ti.Validate())
}

func TestContextThreatIntel_Indicators(t *testing.T) {
	ti := NewContextThreatIntel(IndicatorDomain, "*.evil.example.com")
	set := ti.Indicators()
	assert.True(t, set.Contains(IndicatorDomain, "evil.example.com"))
}
