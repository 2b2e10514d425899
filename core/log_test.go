package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextLog_ValidateRequiresOrigin(t *testing.T) {
	l := NewContextLog("firewall", "connection dropped")
	assert.Error(t, l.Validate())

	l.SourceIP = "10.0.0.5"
	require.NoError(t, l.Validate())

	l.SourceIP = ""
	l.SourceDeviceUUID = "device-uuid"
	require.NoError(t, l.Validate())

	l.Message = ""
	assert.Error(t, l.Validate())
}
