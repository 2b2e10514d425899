package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndicatorSet_FirstWinsDeduplication(t *testing.T) {
	set := NewIndicatorSet()

	assert.True(t, set.Add(IndicatorIP, "10.0.0.1"))
	assert.False(t, set.Add(IndicatorIP, "10.0.0.1"))
	assert.True(t, set.Add(IndicatorIP, "10.0.0.2"))

	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, set.Values(IndicatorIP))
	assert.Equal(t, 2, set.Len())
}

func TestIndicatorSet_EmptyValuesIgnored(t *testing.T) {
	set := NewIndicatorSet()

	assert.False(t, set.Add(IndicatorIP, ""))
	assert.False(t, set.Add(IndicatorDomain, "   "))
	assert.Equal(t, 0, set.Len())
	assert.Nil(t, set.Values(IndicatorIP))
}

func TestIndicatorSet_WildcardDomainCollapses(t *testing.T) {
	set := NewIndicatorSet()

	assert.True(t, set.Add(IndicatorDomain, "*.example.com"))
	assert.False(t, set.Add(IndicatorDomain, "example.com"))

	assert.Equal(t, []string{"example.com"}, set.Values(IndicatorDomain))
	assert.True(t, set.Contains(IndicatorDomain, "*.example.com"))
	assert.True(t, set.Contains(IndicatorDomain, "example.com"))
}

func TestIndicatorSet_WildcardOnlyStripsDomains(t *testing.T) {
	set := NewIndicatorSet()

	set.Add(IndicatorURL, "*.example.com/path")
	assert.Equal(t, []string{"*.example.com/path"}, set.Values(IndicatorURL))
}

func TestIndicatorSet_InvalidCategoryRejected(t *testing.T) {
	set := NewIndicatorSet()
	assert.False(t, set.Add(IndicatorCategory("bogus"), "value"))
}

func TestIndicatorSet_Merge(t *testing.T) {
	a := NewIndicatorSet()
	a.AddAll(IndicatorIP, "10.0.0.1", "10.0.0.2")

	b := NewIndicatorSet()
	b.AddAll(IndicatorIP, "10.0.0.2", "10.0.0.3")
	b.Add(IndicatorHash, "d41d8cd98f00b204e9800998ecf8427e")

	a.Merge(b)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}, a.Values(IndicatorIP))
	assert.Equal(t, []string{"d41d8cd98f00b204e9800998ecf8427e"}, a.Values(IndicatorHash))

	// nil merge is a no-op
	a.Merge(nil)
	assert.Equal(t, 4, a.Len())
}

func TestIndicatorSet_ValuesReturnsCopy(t *testing.T) {
	set := NewIndicatorSet()
	set.AddAll(IndicatorIP, "10.0.0.1", "10.0.0.2")

	values := set.Values(IndicatorIP)
	values[0] = "mutated"

	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, set.Values(IndicatorIP))
}

func TestIndicatorSet_JSONRoundTrip(t *testing.T) {
	set := NewIndicatorSet()
	set.AddAll(IndicatorIP, "10.0.0.1")
	set.Add(IndicatorDomain, "*.example.com")

	data, err := json.Marshal(set)
	require.NoError(t, err)

	decoded := NewIndicatorSet()
	require.NoError(t, json.Unmarshal(data, decoded))

	assert.Equal(t, []string{"10.0.0.1"}, decoded.Values(IndicatorIP))
	assert.Equal(t, []string{"example.com"}, decoded.Values(IndicatorDomain))
}
