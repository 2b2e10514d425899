package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Hit types reported by threat intel engines
const (
	HitTypeSuspicious = "suspicious"
	HitTypeMalicious  = "malicious"
)

// ThreatIntelDetection is the verdict of a single threat intel engine for
// one indicator.
type ThreatIntelDetection struct {
	Engine     string `json:"engine"`
	IsKnown    bool   `json:"is_known"`
	IsHit      bool   `json:"is_hit"`
	HitType    string `json:"hit_type,omitempty"` // suspicious or malicious
	ThreatName string `json:"threat_name,omitempty"`
}

// counts reports whether the detection counts as a hit
func (d ThreatIntelDetection) countsAsHit() bool {
	return d.IsHit || d.HitType == HitTypeSuspicious || d.HitType == HitTypeMalicious
}

// ThreatIntelScore aggregates engine verdicts. Derived distinguishes a
// score computed from the detection list from one supplied by the source;
// the two modes are mutually exclusive on a context.
type ThreatIntelScore struct {
	Hits           int  `json:"hits"`
	HitsSuspicious int  `json:"hits_suspicious"`
	HitsMalicious  int  `json:"hits_malicious"`
	Known          int  `json:"known"`
	Unknown        int  `json:"unknown"`
	Total          int  `json:"total"`
	Derived        bool `json:"derived"`
}

// validate checks internal consistency of a score
func (s ThreatIntelScore) validate() error {
	if s.Total < 0 {
		return fmt.Errorf("threat intel score has negative total %d", s.Total)
	}
	if s.Hits < 0 || s.Hits > s.Total {
		return fmt.Errorf("threat intel score has %d hits out of %d total", s.Hits, s.Total)
	}
	if s.HitsSuspicious < 0 || s.HitsSuspicious > s.Hits {
		return fmt.Errorf("threat intel score has %d suspicious hits out of %d hits", s.HitsSuspicious, s.Hits)
	}
	if s.HitsMalicious < 0 || s.HitsMalicious > s.Hits {
		return fmt.Errorf("threat intel score has %d malicious hits out of %d hits", s.HitsMalicious, s.Hits)
	}
	if s.Known < 0 || s.Known > s.Total {
		return fmt.Errorf("threat intel score has %d known out of %d total", s.Known, s.Total)
	}
	if s.Unknown != s.Total-s.Known {
		return fmt.Errorf("threat intel score unknown=%d, want total-known=%d", s.Unknown, s.Total-s.Known)
	}
	return nil
}

// ContextThreatIntel aggregates threat intelligence for one indicator
type ContextThreatIntel struct {
	ContextUUID string    `json:"uuid"`
	Timestamp   time.Time `json:"timestamp"`

	Indicator         string                 `json:"indicator"`
	IndicatorCategory IndicatorCategory      `json:"indicator_category"`
	Detections        []ThreatIntelDetection `json:"detections,omitempty"`
	Score             *ThreatIntelScore      `json:"score,omitempty"`
}

// NewContextThreatIntel creates a threat intel context for one indicator
func NewContextThreatIntel(category IndicatorCategory, indicator string) *ContextThreatIntel {
	return &ContextThreatIntel{
		ContextUUID:       uuid.NewString(),
		Timestamp:         time.Now().UTC(),
		Indicator:         indicator,
		IndicatorCategory: category,
	}
}

// SetScore records a score supplied by the intel source. It fails when the
// score is inconsistent or when a score already exists (supplied and
// derived scores are mutually exclusive).
func (t *ContextThreatIntel) SetScore(hits, hitsSuspicious, hitsMalicious, known, total int) error {
	if t.Score != nil {
		return fmt.Errorf("threat intel %s already has a score", t.ContextUUID)
	}
	score := ThreatIntelScore{
		Hits:           hits,
		HitsSuspicious: hitsSuspicious,
		HitsMalicious:  hitsMalicious,
		Known:          known,
		Unknown:        total - known,
		Total:          total,
	}
	if err := score.validate(); err != nil {
		return err
	}
	t.Score = &score
	return nil
}

// DeriveScore computes the score from the detection list. It fails when a
// supplied score is already present.
func (t *ContextThreatIntel) DeriveScore() error {
	if t.Score != nil {
		return fmt.Errorf("threat intel %s already has a score", t.ContextUUID)
	}
	score := ThreatIntelScore{Total: len(t.Detections), Derived: true}
	for _, d := range t.Detections {
		if d.countsAsHit() {
			score.Hits++
			switch d.HitType {
			case HitTypeSuspicious:
				score.HitsSuspicious++
			case HitTypeMalicious:
				score.HitsMalicious++
			}
		}
		if d.IsKnown {
			score.Known++
		}
	}
	score.Unknown = score.Total - score.Known
	t.Score = &score
	return nil
}

// UUID returns the context identity
func (t *ContextThreatIntel) UUID() string { return t.ContextUUID }

// Time returns the timeline timestamp
func (t *ContextThreatIntel) Time() time.Time { return t.Timestamp }

// Indicators returns the looked-up indicator in its own category
func (t *ContextThreatIntel) Indicators() *IndicatorSet {
	set := NewIndicatorSet()
	set.Add(t.IndicatorCategory, t.Indicator)
	return set
}

// Validate requires the indicator and a consistent score when present
func (t *ContextThreatIntel) Validate() error {
	if t.Indicator == "" {
		return fmt.Errorf("threat intel %s is missing the indicator", t.ContextUUID)
	}
	if !t.IndicatorCategory.IsValid() {
		return fmt.Errorf("threat intel %s has invalid indicator category %q", t.Indicator, t.IndicatorCategory)
	}
	if t.Score != nil {
		if err := t.Score.validate(); err != nil {
			return fmt.Errorf("threat intel %s: %w", t.Indicator, err)
		}
	}
	return nil
}

func (t *ContextThreatIntel) String() string {
	if t.Score != nil {
		return fmt.Sprintf("ThreatIntel(%s, %d/%d hits)", t.Indicator, t.Score.Hits, t.Score.Total)
	}
	return fmt.Sprintf("ThreatIntel(%s, unscored)", t.Indicator)
}

var _ Context = (*ContextThreatIntel)(nil)
