package core

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/google/uuid"
)

// FirewallActionDenied is forced onto a flow when either byte counter is
// reported as zero: a connection that moved no data in one direction never
// completed. Absent counters are nil and never force the action.
const FirewallActionDenied = "Deny / Failed Connection"

// ContextFlow describes a single network flow
type ContextFlow struct {
	ContextUUID string    `json:"uuid"`
	Timestamp   time.Time `json:"timestamp"`

	IntegrityHash string `json:"integrity_hash,omitempty"`

	SourceIP        string        `json:"source_ip"`
	SourcePort      int           `json:"source_port,omitempty"`
	DestinationIP   string        `json:"destination_ip"`
	DestinationPort int           `json:"destination_port,omitempty"`
	Protocol        string        `json:"protocol,omitempty"`
	Application     string        `json:"application,omitempty"`
	BytesSent       *int64        `json:"bytes_sent,omitempty"`
	BytesReceived   *int64        `json:"bytes_received,omitempty"`
	FirewallAction  string        `json:"firewall_action,omitempty"`
	FirewallRuleID  string        `json:"firewall_rule_id,omitempty"`
	Direction       FlowDirection `json:"direction,omitempty"`

	HTTP   *HTTP          `json:"http,omitempty"`
	DNS    *DNSQuery      `json:"dns,omitempty"`
	Device *ContextDevice `json:"device,omitempty"`
	File   *ContextFile   `json:"file,omitempty"`
}

// NewContextFlow creates a flow context and derives direction and firewall
// action from the endpoint addresses and byte counters.
func NewContextFlow(timestamp time.Time, sourceIP, destinationIP string) *ContextFlow {
	f := &ContextFlow{
		ContextUUID:   uuid.NewString(),
		Timestamp:     timestamp,
		SourceIP:      sourceIP,
		DestinationIP: destinationIP,
	}
	f.Normalize()
	return f
}

// SetByteCounters records the reported byte counters and re-derives the
// firewall action.
func (f *ContextFlow) SetByteCounters(sent, received int64) {
	f.BytesSent = &sent
	f.BytesReceived = &received
	f.Normalize()
}

// Normalize derives Direction from the locality of the endpoints when not
// supplied, and forces the firewall action to FirewallActionDenied when a
// reported byte counter is zero. Call it again after filling fields on a
// literal struct.
func (f *ContextFlow) Normalize() {
	if f.Direction == "" {
		srcLocal := isPrivateIP(f.SourceIP)
		dstLocal := isPrivateIP(f.DestinationIP)
		switch {
		case srcLocal && dstLocal:
			f.Direction = FlowDirectionL2L
		case srcLocal && !dstLocal:
			f.Direction = FlowDirectionL2R
		case !srcLocal && dstLocal:
			f.Direction = FlowDirectionR2L
		default:
			f.Direction = FlowDirectionR2R
		}
	}

	if (f.BytesSent != nil && *f.BytesSent == 0) || (f.BytesReceived != nil && *f.BytesReceived == 0) {
		f.FirewallAction = FirewallActionDenied
	}
}

// isPrivateIP reports whether the address belongs to a private or loopback
// range. Unparseable addresses count as remote.
func isPrivateIP(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	return addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast()
}

// UUID returns the context identity
func (f *ContextFlow) UUID() string { return f.ContextUUID }

// Time returns the timeline timestamp
func (f *ContextFlow) Time() time.Time { return f.Timestamp }

// Indicators returns endpoint IPs plus nested context indicators
func (f *ContextFlow) Indicators() *IndicatorSet {
	set := NewIndicatorSet()
	set.AddAll(IndicatorIP, f.SourceIP, f.DestinationIP)
	if f.HTTP != nil {
		set.Merge(f.HTTP.Indicators())
	}
	if f.DNS != nil {
		set.Merge(f.DNS.Indicators())
	}
	if f.Device != nil {
		set.Merge(f.Device.Indicators())
	}
	if f.File != nil {
		set.Merge(f.File.Indicators())
	}
	return set
}

// Validate requires a timestamp and parseable endpoint addresses
func (f *ContextFlow) Validate() error {
	if f.Timestamp.IsZero() {
		return fmt.Errorf("flow %s is missing a timestamp", f.ContextUUID)
	}
	if _, err := netip.ParseAddr(f.SourceIP); err != nil {
		return fmt.Errorf("flow %s has invalid source IP %q: %w", f.ContextUUID, f.SourceIP, err)
	}
	if _, err := netip.ParseAddr(f.DestinationIP); err != nil {
		return fmt.Errorf("flow %s has invalid destination IP %q: %w", f.ContextUUID, f.DestinationIP, err)
	}
	if (f.BytesSent != nil && *f.BytesSent < 0) || (f.BytesReceived != nil && *f.BytesReceived < 0) {
		return fmt.Errorf("flow %s has negative byte counters", f.ContextUUID)
	}
	return nil
}

func (f *ContextFlow) String() string {
	return fmt.Sprintf("Flow(%s:%d -> %s:%d, %s)", f.SourceIP, f.SourcePort, f.DestinationIP, f.DestinationPort, f.Direction)
}

var _ Context = (*ContextFlow)(nil)
