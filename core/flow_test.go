package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextFlow_DirectionInference(t *testing.T) {
	ts := time.Now().UTC()
	tests := []struct {
		name     string
		source   string
		dest     string
		expected FlowDirection
	}{
		{"local to local", "10.0.0.5", "192.168.1.10", FlowDirectionL2L},
		{"local to remote", "10.0.0.5", "203.0.113.9", FlowDirectionL2R},
		{"remote to local", "203.0.113.9", "172.16.0.4", FlowDirectionR2L},
		{"remote to remote", "203.0.113.9", "198.51.100.7", FlowDirectionR2R},
		{"loopback counts as local", "127.0.0.1", "203.0.113.9", FlowDirectionL2R},
		{"unparseable counts as remote", "not-an-ip", "10.0.0.5", FlowDirectionR2L},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow := NewContextFlow(ts, tt.source, tt.dest)
			assert.Equal(t, tt.expected, flow.Direction)
		})
	}
}

func TestContextFlow_SuppliedDirectionKept(t *testing.T) {
	flow := &ContextFlow{
		Timestamp:     time.Now().UTC(),
		SourceIP:      "10.0.0.5",
		DestinationIP: "192.168.1.10",
		Direction:     FlowDirectionR2R,
	}
	flow.SetByteCounters(10, 10)
	assert.Equal(t, FlowDirectionR2R, flow.Direction)
}

func TestContextFlow_ZeroBytesForcesDeniedAction(t *testing.T) {
	ts := time.Now().UTC()

	flow := &ContextFlow{
		Timestamp:      ts,
		SourceIP:       "10.0.0.5",
		DestinationIP:  "203.0.113.9",
		FirewallAction: "Allow",
	}
	flow.SetByteCounters(512, 0)
	assert.Equal(t, FirewallActionDenied, flow.FirewallAction)

	flow = &ContextFlow{
		Timestamp:      ts,
		SourceIP:       "10.0.0.5",
		DestinationIP:  "203.0.113.9",
		FirewallAction: "Allow",
	}
	flow.SetByteCounters(512, 1024)
	assert.Equal(t, "Allow", flow.FirewallAction)
}

func TestContextFlow_UnreportedCountersDoNotForceDenied(t *testing.T) {
	// Counters that were never reported must not be read as "moved no
	// data": the action stays as delivered, also after the counters are
	// filled in later.
	flow := NewContextFlow(time.Now().UTC(), "10.0.0.5", "203.0.113.9")
	assert.Empty(t, flow.FirewallAction)

	flow.SetByteCounters(512, 1024)
	assert.Empty(t, flow.FirewallAction)
}

func TestContextFlow_Validate(t *testing.T) {
	ts := time.Now().UTC()

	flow := NewContextFlow(ts, "10.0.0.5", "203.0.113.9")
	require.NoError(t, flow.Validate())

	assert.Error(t, NewContextFlow(time.Time{}, "10.0.0.5", "203.0.113.9").Validate())
	assert.Error(t, NewContextFlow(ts, "bogus", "203.0.113.9").Validate())
	assert.Error(t, NewContextFlow(ts, "10.0.0.5", "").Validate())

	negative := int64(-1)
	flow.BytesSent = &negative
	assert.Error(t, flow.Validate())
}

func TestContextFlow_IndicatorsIncludeNestedContexts(t *testing.T) {
	flow := NewContextFlow(time.Now().UTC(), "10.0.0.5", "203.0.113.9")
	flow.DNS = NewDNSQuery("A", "evil.example.com")
	flow.DNS.SetResolvedIP("198.51.100.7")

	set := flow.Indicators()
	assert.True(t, set.Contains(IndicatorIP, "10.0.0.5"))
	assert.True(t, set.Contains(IndicatorIP, "203.0.113.9"))
	assert.True(t, set.Contains(IndicatorIP, "198.51.100.7"))
	assert.True(t, set.Contains(IndicatorDomain, "evil.example.com"))
}
