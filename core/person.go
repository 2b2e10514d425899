package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Person describes a user or contact involved in an alert. AccessTo holds
// asset UUIDs only; the referenced devices live on their own timelines.
type Person struct {
	ContextUUID string    `json:"uuid"`
	Timestamp   time.Time `json:"timestamp"`

	Name      string      `json:"name"`
	Email     string      `json:"email,omitempty"`
	Phone     string      `json:"phone,omitempty"`
	Roles     []string    `json:"roles,omitempty"`
	Locations []*Location `json:"locations,omitempty"`
	Tags      []string    `json:"tags,omitempty"`
	AccessTo  []string    `json:"access_to,omitempty"`
}

// NewPerson creates a person context stamped with the current time
func NewPerson(name string) *Person {
	return &Person{
		ContextUUID: uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		Name:        name,
	}
}

// UUID returns the context identity
func (p *Person) UUID() string { return p.ContextUUID }

// Time returns the timeline timestamp
func (p *Person) Time() time.Time { return p.Timestamp }

// Indicators returns the email indicator plus any location indicators
func (p *Person) Indicators() *IndicatorSet {
	set := NewIndicatorSet()
	set.Add(IndicatorEmail, p.Email)
	for _, loc := range p.Locations {
		set.Merge(loc.Indicators())
	}
	return set
}

// Validate requires a name
func (p *Person) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("person %s is missing a name", p.ContextUUID)
	}
	return nil
}

func (p *Person) String() string {
	return fmt.Sprintf("Person(%s, %s)", p.Name, p.Email)
}

var _ Context = (*Person)(nil)
