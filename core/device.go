package core

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/google/uuid"
)

// ContextDevice describes an asset (host, appliance, VM) involved in an
// alert. A device needs at least a name or one IP address to be useful.
// A virtualized device references its hypervisor by UUID only, so the
// reference can never form an ownership cycle.
type ContextDevice struct {
	ContextUUID string    `json:"uuid"`
	Timestamp   time.Time `json:"timestamp"`

	Name           string   `json:"name,omitempty"`
	IPs            []string `json:"ips,omitempty"`
	MAC            string   `json:"mac,omitempty"`
	OSFamily       string   `json:"os_family,omitempty"`
	OSVersion      string   `json:"os_version,omitempty"`
	InScope        bool     `json:"in_scope"`
	HypervisorUUID string   `json:"hypervisor_uuid,omitempty"`

	Location        *Location        `json:"location,omitempty"`
	Services        []*Service       `json:"services,omitempty"`
	Vulnerabilities []*Vulnerability `json:"vulnerabilities,omitempty"`
}

// NewContextDevice creates a device context stamped with the current time
func NewContextDevice(name string, ips ...string) *ContextDevice {
	return &ContextDevice{
		ContextUUID: uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		Name:        name,
		IPs:         ips,
	}
}

// UUID returns the context identity
func (d *ContextDevice) UUID() string { return d.ContextUUID }

// Time returns the timeline timestamp
func (d *ContextDevice) Time() time.Time { return d.Timestamp }

// Indicators returns the device IPs plus the indicators of the location
// and any attached services and vulnerabilities.
func (d *ContextDevice) Indicators() *IndicatorSet {
	set := NewIndicatorSet()
	set.AddAll(IndicatorIP, d.IPs...)
	if d.Location != nil {
		set.Merge(d.Location.Indicators())
	}
	for _, s := range d.Services {
		set.Merge(s.Indicators())
	}
	for _, v := range d.Vulnerabilities {
		set.Merge(v.Indicators())
	}
	return set
}

// Validate requires a name or at least one parseable IP, a hypervisor
// reference that is not the device itself, and valid attachments.
func (d *ContextDevice) Validate() error {
	if d.Name == "" && len(d.IPs) == 0 {
		return fmt.Errorf("device %s has neither name nor IP", d.ContextUUID)
	}
	for _, ip := range d.IPs {
		if _, err := netip.ParseAddr(ip); err != nil {
			return fmt.Errorf("device %s has invalid IP %q: %w", d.Name, ip, err)
		}
	}
	if d.HypervisorUUID != "" && d.HypervisorUUID == d.ContextUUID {
		return fmt.Errorf("device %s references itself as hypervisor", d.Name)
	}
	for _, s := range d.Services {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("device %s: %w", d.Name, err)
		}
	}
	for _, v := range d.Vulnerabilities {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("device %s: %w", d.Name, err)
		}
	}
	return nil
}

func (d *ContextDevice) String() string {
	return fmt.Sprintf("Device(%s, %v)", d.Name, d.IPs)
}

var _ Context = (*ContextDevice)(nil)
