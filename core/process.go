package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ioTruncationMarker is appended to process I/O text cut at MaxProcessIOSize
const ioTruncationMarker = "... (truncated)"

// ContextProcess describes a process observation. Parent and children are
// UUID strings rather than pointers so process trees never form reference
// cycles across timelines.
type ContextProcess struct {
	ContextUUID string    `json:"uuid"`
	Timestamp   time.Time `json:"timestamp"`

	Name        string   `json:"name"`
	PID         int      `json:"pid,omitempty"`
	ParentUUID  string   `json:"parent_uuid,omitempty"`
	ChildUUIDs  []string `json:"child_uuids,omitempty"`
	CommandLine string   `json:"command_line,omitempty"`
	Owner       string   `json:"owner,omitempty"`
	Signature   string   `json:"signature,omitempty"`
	IsSigned    bool     `json:"is_signed"`
	MD5         string   `json:"md5,omitempty"`
	SHA1        string   `json:"sha1,omitempty"`
	SHA256      string   `json:"sha256,omitempty"`
	Input       string   `json:"input,omitempty"`
	Output      string   `json:"output,omitempty"`

	Flow         *ContextFlow   `json:"flow,omitempty"`
	CreatedFiles []*ContextFile `json:"created_files,omitempty"`
}

// NewContextProcess creates a process context stamped with the current time
func NewContextProcess(name string, pid int) *ContextProcess {
	return &ContextProcess{
		ContextUUID: uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		Name:        name,
		PID:         pid,
	}
}

// SetIO stores captured process input/output, truncating anything past
// MaxProcessIOSize with a marker suffix.
func (p *ContextProcess) SetIO(input, output string) {
	p.Input = truncateIO(input)
	p.Output = truncateIO(output)
}

func truncateIO(s string) string {
	if len(s) <= MaxProcessIOSize {
		return s
	}
	return s[:MaxProcessIOSize] + ioTruncationMarker
}

// UUID returns the context identity
func (p *ContextProcess) UUID() string { return p.ContextUUID }

// Time returns the timeline timestamp
func (p *ContextProcess) Time() time.Time { return p.Timestamp }

// Indicators returns the process image hashes plus nested flow and created
// file indicators.
func (p *ContextProcess) Indicators() *IndicatorSet {
	set := NewIndicatorSet()
	set.AddAll(IndicatorHash, p.MD5, p.SHA1, p.SHA256)
	if p.Flow != nil {
		set.Merge(p.Flow.Indicators())
	}
	for _, f := range p.CreatedFiles {
		set.Merge(f.Indicators())
	}
	return set
}

// Validate requires a name, sane PID and well-formed hash lengths
func (p *ContextProcess) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("process %s is missing a name", p.ContextUUID)
	}
	if p.PID < 0 {
		return fmt.Errorf("process %s has negative pid %d", p.Name, p.PID)
	}
	if err := validateHashLengths(p.Name, p.MD5, p.SHA1, p.SHA256); err != nil {
		return err
	}
	return nil
}

func (p *ContextProcess) String() string {
	return fmt.Sprintf("Process(%s, pid=%d)", p.Name, p.PID)
}

var _ Context = (*ContextProcess)(nil)
