package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Vulnerability describes a CVE affecting an asset or service in scope
type Vulnerability struct {
	ContextUUID string    `json:"uuid"`
	Timestamp   time.Time `json:"timestamp"`

	CVE         string   `json:"cve"`
	Description string   `json:"description,omitempty"`
	CVSS        float64  `json:"cvss,omitempty"`
	Patched     bool     `json:"patched"`
	References  []string `json:"references,omitempty"`
}

// NewVulnerability creates a vulnerability context for the given CVE
func NewVulnerability(cve string, observed time.Time) *Vulnerability {
	return &Vulnerability{
		ContextUUID: uuid.NewString(),
		Timestamp:   observed,
		CVE:         cve,
	}
}

// UUID returns the context identity
func (v *Vulnerability) UUID() string { return v.ContextUUID }

// Time returns the timeline timestamp
func (v *Vulnerability) Time() time.Time { return v.Timestamp }

// Indicators returns the CVE id under the "other" category
func (v *Vulnerability) Indicators() *IndicatorSet {
	set := NewIndicatorSet()
	set.Add(IndicatorOther, v.CVE)
	return set
}

// Validate requires the CVE id and a timestamp
func (v *Vulnerability) Validate() error {
	if v.CVE == "" {
		return fmt.Errorf("vulnerability %s is missing a CVE id", v.ContextUUID)
	}
	if v.Timestamp.IsZero() {
		return fmt.Errorf("vulnerability %s is missing a timestamp", v.CVE)
	}
	if v.CVSS < 0 || v.CVSS > 10 {
		return fmt.Errorf("vulnerability %s has CVSS %v out of range 0-10", v.CVE, v.CVSS)
	}
	return nil
}

func (v *Vulnerability) String() string {
	return fmt.Sprintf("Vulnerability(%s, cvss=%.1f)", v.CVE, v.CVSS)
}

var _ Context = (*Vulnerability)(nil)

// Service describes a network service running on an asset. Child services
// are referenced by UUID only so nested topologies stay acyclic.
type Service struct {
	ContextUUID string    `json:"uuid"`
	Timestamp   time.Time `json:"timestamp"`

	Name      string   `json:"name"`
	Vendor    string   `json:"vendor,omitempty"`
	Ports     []int    `json:"ports,omitempty"`
	Protocol  string   `json:"protocol,omitempty"`
	RiskScore int      `json:"risk_score,omitempty"` // 0-100
	Children  []string `json:"child_services,omitempty"`
}

// NewService creates a service context stamped with the current time
func NewService(name string) *Service {
	return &Service{
		ContextUUID: uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		Name:        name,
	}
}

// UUID returns the context identity
func (s *Service) UUID() string { return s.ContextUUID }

// Time returns the timeline timestamp
func (s *Service) Time() time.Time { return s.Timestamp }

// Indicators returns an empty set; services carry no indicators themselves
func (s *Service) Indicators() *IndicatorSet {
	return NewIndicatorSet()
}

// Validate requires a name and a sane risk score
func (s *Service) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("service %s is missing a name", s.ContextUUID)
	}
	if s.RiskScore < 0 || s.RiskScore > 100 {
		return fmt.Errorf("service %s has risk score %d out of range 0-100", s.Name, s.RiskScore)
	}
	for _, port := range s.Ports {
		if port < 1 || port > 65535 {
			return fmt.Errorf("service %s has invalid port %d", s.Name, port)
		}
	}
	return nil
}

func (s *Service) String() string {
	return fmt.Sprintf("Service(%s, ports=%v)", s.Name, s.Ports)
}

var _ Context = (*Service)(nil)
