package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextDevice_Validate(t *testing.T) {
	d := NewContextDevice("ws-001", "10.0.0.5")
	require.NoError(t, d.Validate())

	assert.Error(t, NewContextDevice("").Validate())
	assert.Error(t, NewContextDevice("ws-002", "not-an-ip").Validate())
}

func TestContextDevice_HypervisorMustNotBeSelf(t *testing.T) {
	host := NewContextDevice("esx-01", "10.0.0.2")
	vm := NewContextDevice("vm-042", "10.0.0.40")

	vm.HypervisorUUID = host.ContextUUID
	require.NoError(t, vm.Validate())

	vm.HypervisorUUID = vm.ContextUUID
	assert.Error(t, vm.Validate())
}

func TestContextDevice_AttachmentsValidated(t *testing.T) {
	d := NewContextDevice("db-01", "10.0.0.7")
	d.Services = append(d.Services, NewService("postgres"))
	d.Vulnerabilities = append(d.Vulnerabilities, NewVulnerability("CVE-2026-0001", time.Now().UTC()))
	require.NoError(t, d.Validate())

	d.Services = append(d.Services, &Service{ContextUUID: "svc-broken"})
	assert.Error(t, d.Validate())
}

func TestContextDevice_IndicatorsIncludeAttachments(t *testing.T) {
	d := NewContextDevice("db-01", "10.0.0.7")
	d.Vulnerabilities = append(d.Vulnerabilities, NewVulnerability("CVE-2026-0001", time.Now().UTC()))

	set := d.Indicators()
	assert.True(t, set.Contains(IndicatorIP, "10.0.0.7"))
	assert.True(t, set.Contains(IndicatorOther, "CVE-2026-0001"))
}
