package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Certificate describes a TLS certificate observed in relation to an alert.
// RelatedAlertUUID ties the observation back to the alert that surfaced it.
type Certificate struct {
	ContextUUID string    `json:"uuid"`
	Timestamp   time.Time `json:"timestamp"`

	RelatedAlertUUID string    `json:"related_alert_uuid"`
	Subject          string    `json:"subject"`
	Issuer           string    `json:"issuer,omitempty"`
	IssuerCommonName string    `json:"issuer_common_name,omitempty"`
	SANs             []string  `json:"subject_alternative_names,omitempty"`
	NotBefore        time.Time `json:"not_before,omitempty"`
	NotAfter         time.Time `json:"not_after,omitempty"`
	PublicKeySize    int       `json:"public_key_size,omitempty"`
	PublicKeyAlgo    string    `json:"public_key_algorithm,omitempty"`
	IsTrusted        bool      `json:"is_trusted"`
	IsSelfSigned     bool      `json:"is_self_signed"`
}

// NewCertificate creates a certificate context for the given alert
func NewCertificate(relatedAlertUUID, subject string) *Certificate {
	return &Certificate{
		ContextUUID:      uuid.NewString(),
		Timestamp:        time.Now().UTC(),
		RelatedAlertUUID: relatedAlertUUID,
		Subject:          subject,
	}
}

// UUID returns the context identity
func (c *Certificate) UUID() string { return c.ContextUUID }

// Time returns the timeline timestamp
func (c *Certificate) Time() time.Time { return c.Timestamp }

// Indicators returns domain indicators for the subject and every SAN.
// Wildcard labels are stripped by the indicator set itself.
func (c *Certificate) Indicators() *IndicatorSet {
	set := NewIndicatorSet()
	if strings.Contains(c.Subject, ".") {
		set.Add(IndicatorDomain, c.Subject)
	}
	for _, san := range c.SANs {
		if strings.Contains(san, ".") {
			set.Add(IndicatorDomain, san)
		}
	}
	return set
}

// Validate requires the related alert reference, a subject, and a
// consistent validity window.
func (c *Certificate) Validate() error {
	if c.RelatedAlertUUID == "" {
		return fmt.Errorf("certificate %s is missing the related alert uuid", c.ContextUUID)
	}
	if c.Subject == "" {
		return fmt.Errorf("certificate %s is missing a subject", c.ContextUUID)
	}
	if !c.NotBefore.IsZero() && !c.NotAfter.IsZero() && c.NotAfter.Before(c.NotBefore) {
		return fmt.Errorf("certificate %s expires before it becomes valid", c.Subject)
	}
	if c.PublicKeySize < 0 {
		return fmt.Errorf("certificate %s has negative public key size %d", c.Subject, c.PublicKeySize)
	}
	return nil
}

func (c *Certificate) String() string {
	return fmt.Sprintf("Certificate(%s, issuer=%s)", c.Subject, c.Issuer)
}

var _ Context = (*Certificate)(nil)
