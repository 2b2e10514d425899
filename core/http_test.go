package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTP_DerivesFullURL(t *testing.T) {
	h := NewHTTP(nil, "GET", "HTTPS", "example.com")
	assert.Equal(t, "https://example.com", h.FullURL)

	h = &HTTP{Type: "HTTP", Host: "example.com", Path: "/login"}
	h.Normalize(nil)
	assert.Equal(t, "http://example.com/login", h.FullURL)
}

func TestHTTP_PrependsLeadingSlash(t *testing.T) {
	h := &HTTP{Type: "HTTPS", Host: "example.com", Path: "api/v1"}
	h.Normalize(nil)

	assert.Equal(t, "/api/v1", h.Path)
	assert.Equal(t, "https://example.com/api/v1", h.FullURL)
}

func TestHTTP_MismatchKeepsSuppliedURL(t *testing.T) {
	h := &HTTP{
		Type:    "HTTPS",
		Host:    "example.com",
		Path:    "/login",
		FullURL: "https://other.example.com/login",
	}
	h.Normalize(nil)

	// The mismatch is logged, not corrected
	assert.Equal(t, "https://other.example.com/login", h.FullURL)
}

func TestHTTP_Validate(t *testing.T) {
	h := NewHTTP(nil, "GET", "HTTPS", "example.com")
	require.NoError(t, h.Validate())

	assert.Error(t, NewHTTP(nil, "", "HTTPS", "example.com").Validate())
	assert.Error(t, NewHTTP(nil, "GET", "FTP", "example.com").Validate())
	assert.Error(t, NewHTTP(nil, "GET", "HTTPS", "").Validate())

	h.StatusCode = 999
	assert.Error(t, h.Validate())
	h.StatusCode = 200
	assert.NoError(t, h.Validate())
}

func TestHTTP_Indicators(t *testing.T) {
	h := &HTTP{Method: "GET", Type: "HTTPS", Host: "example.com", Path: "/payload"}
	h.Normalize(nil)

	set := h.Indicators()
	assert.True(t, set.Contains(IndicatorDomain, "example.com"))
	assert.True(t, set.Contains(IndicatorURL, "https://example.com/payload"))
}

func TestDNSQuery_Validate(t *testing.T) {
	q := NewDNSQuery("A", "example.com")
	require.NoError(t, q.Validate())

	assert.Error(t, NewDNSQuery("", "example.com").Validate())
	assert.Error(t, NewDNSQuery("A", "").Validate())
}

func TestDNSQuery_SetResolvedIP(t *testing.T) {
	q := NewDNSQuery("A", "example.com")
	assert.False(t, q.HasResponse)

	q.SetResolvedIP("198.51.100.7")
	assert.True(t, q.HasResponse)

	q.SetResolvedIP("")
	assert.False(t, q.HasResponse)
}
