package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContextRegistry describes a Windows registry observation
type ContextRegistry struct {
	ContextUUID string    `json:"uuid"`
	Timestamp   time.Time `json:"timestamp"`

	Hive  string `json:"hive,omitempty"`
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
	Data  string `json:"data,omitempty"`
}

// NewContextRegistry creates a registry context stamped with the current time
func NewContextRegistry(hive, key string) *ContextRegistry {
	return &ContextRegistry{
		ContextUUID: uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		Hive:        hive,
		Key:         key,
	}
}

// UUID returns the context identity
func (r *ContextRegistry) UUID() string { return r.ContextUUID }

// Time returns the timeline timestamp
func (r *ContextRegistry) Time() time.Time { return r.Timestamp }

// Indicators returns the combined lowercased key->data indicator
func (r *ContextRegistry) Indicators() *IndicatorSet {
	set := NewIndicatorSet()
	if r.Key != "" {
		set.Add(IndicatorRegistry, strings.ToLower(r.Key)+"->"+strings.ToLower(r.Data))
	}
	return set
}

// Validate requires the key
func (r *ContextRegistry) Validate() error {
	if r.Key == "" {
		return fmt.Errorf("registry context %s is missing the key", r.ContextUUID)
	}
	return nil
}

func (r *ContextRegistry) String() string {
	return fmt.Sprintf("Registry(%s\\%s = %s)", r.Hive, r.Key, r.Data)
}

var _ Context = (*ContextRegistry)(nil)
