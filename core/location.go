package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Location describes a geographic / network location attached to other
// context values. It is valid as soon as any single field carries data.
type Location struct {
	ContextUUID string    `json:"uuid"`
	Timestamp   time.Time `json:"timestamp"`

	Country   string  `json:"country,omitempty"`
	City      string  `json:"city,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Timezone  string  `json:"timezone,omitempty"`
	ASN       int     `json:"asn,omitempty"`
	OrgName   string  `json:"org_name,omitempty"`
}

// NewLocation creates a location context stamped with the current time
func NewLocation(country, city string) *Location {
	return &Location{
		ContextUUID: uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		Country:     country,
		City:        city,
	}
}

// UUID returns the context identity
func (l *Location) UUID() string { return l.ContextUUID }

// Time returns the timeline timestamp
func (l *Location) Time() time.Time { return l.Timestamp }

// Indicators returns the country indicator when set
func (l *Location) Indicators() *IndicatorSet {
	set := NewIndicatorSet()
	set.Add(IndicatorCountry, l.Country)
	return set
}

// Validate requires at least one populated field
func (l *Location) Validate() error {
	if l.Country == "" && l.City == "" && l.Latitude == 0 && l.Longitude == 0 &&
		l.Timezone == "" && l.ASN == 0 && l.OrgName == "" {
		return fmt.Errorf("location %s has no data", l.ContextUUID)
	}
	return nil
}

func (l *Location) String() string {
	return fmt.Sprintf("Location(%s, %s)", l.Country, l.City)
}

var _ Context = (*Location)(nil)
