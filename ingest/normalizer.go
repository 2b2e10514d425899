// Package ingest converts raw vendor alert payloads into the normalized
// domain model. A bad payload is skipped with an error log, never fatal to
// the batch.
package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"aegis/core"
	"aegis/metrics"
)

// RawAlert is the wire shape delivered by detection sources
type RawAlert struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Source      string    `json:"source" validate:"required"`
	Severity    int       `json:"severity" validate:"gte=0,lte=100"`

	Rule *RawRule `json:"rule,omitempty"`

	Host *struct {
		Name string   `json:"name"`
		IPs  []string `json:"ips"`
	} `json:"host,omitempty"`

	User *struct {
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"omitempty,email"`
	} `json:"user,omitempty"`

	Flows []RawFlow `json:"flows,omitempty" validate:"dive"`

	Process *RawProcess `json:"process,omitempty"`

	Message string `json:"message,omitempty"`
}

// RawRule is the detection rule section of a raw alert
type RawRule struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Severity int    `json:"severity" validate:"gte=0,lte=100"`
	Query    string `json:"query"`
}

// RawFlow is one network flow of a raw alert
type RawFlow struct {
	Timestamp       time.Time `json:"timestamp"`
	SourceIP        string    `json:"source_ip" validate:"required,ip"`
	SourcePort      int       `json:"source_port" validate:"gte=0,lte=65535"`
	DestinationIP   string    `json:"destination_ip" validate:"required,ip"`
	DestinationPort int       `json:"destination_port" validate:"gte=0,lte=65535"`
	Protocol        string    `json:"protocol"`
	BytesSent       *int64    `json:"bytes_sent" validate:"omitempty,gte=0"`
	BytesReceived   *int64    `json:"bytes_received" validate:"omitempty,gte=0"`
	FirewallAction  string    `json:"firewall_action"`
}

// RawProcess is the process section of a raw alert
type RawProcess struct {
	Name        string `json:"name" validate:"required"`
	PID         int    `json:"pid" validate:"gte=0"`
	CommandLine string `json:"command_line"`
	Owner       string `json:"owner"`
	SHA256      string `json:"sha256" validate:"omitempty,len=64,hexadecimal"`
}

// Normalizer converts raw alert payloads into core alerts
type Normalizer struct {
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

// NewNormalizer creates a normalizer
func NewNormalizer(logger *zap.SugaredLogger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Normalizer{
		validate: validator.New(),
		logger:   logger,
	}
}

// Normalize parses and validates one raw payload and builds the alert
func (n *Normalizer) Normalize(payload []byte) (*core.Alert, error) {
	var raw RawAlert
	if err := json.Unmarshal(payload, &raw); err != nil {
		metrics.AlertsRejected.WithLabelValues("parse").Inc()
		return nil, fmt.Errorf("failed to parse raw alert: %w", err)
	}
	if err := n.validate.Struct(&raw); err != nil {
		metrics.AlertsRejected.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("raw alert %q failed validation: %w", raw.Name, err)
	}

	timestamp := raw.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	alert := &core.Alert{
		AlertUUID:   uuid.NewString(),
		Name:        raw.Name,
		Description: raw.Description,
		Timestamp:   timestamp,
		Source:      raw.Source,
		VendorID:    raw.ID,
		Severity:    raw.Severity,
		State:       core.AlertStateNew,
	}

	if raw.Rule != nil {
		rule := core.NewRule(raw.Rule.ID, raw.Rule.Name, raw.Rule.Severity)
		rule.Query = raw.Rule.Query
		alert.Rules = append(alert.Rules, rule)
	}

	if raw.Host != nil && (raw.Host.Name != "" || len(raw.Host.IPs) > 0) {
		alert.Device = core.NewContextDevice(raw.Host.Name, raw.Host.IPs...)
	}

	if raw.User != nil {
		user := core.NewPerson(raw.User.Name)
		user.Email = raw.User.Email
		alert.User = user
	}

	for _, rf := range raw.Flows {
		flowTS := rf.Timestamp
		if flowTS.IsZero() {
			flowTS = timestamp
		}
		flow := &core.ContextFlow{
			ContextUUID:     uuid.NewString(),
			Timestamp:       flowTS,
			SourceIP:        rf.SourceIP,
			SourcePort:      rf.SourcePort,
			DestinationIP:   rf.DestinationIP,
			DestinationPort: rf.DestinationPort,
			Protocol:        rf.Protocol,
			BytesSent:       rf.BytesSent,
			BytesReceived:   rf.BytesReceived,
			FirewallAction:  rf.FirewallAction,
		}
		flow.Normalize()
		alert.Flows = append(alert.Flows, flow)
	}

	if raw.Process != nil {
		proc := core.NewContextProcess(raw.Process.Name, raw.Process.PID)
		proc.Timestamp = timestamp
		proc.CommandLine = raw.Process.CommandLine
		proc.Owner = raw.Process.Owner
		proc.SHA256 = raw.Process.SHA256
		alert.Processes = append(alert.Processes, proc)
	}

	if raw.Message != "" {
		log := core.NewContextLog(raw.Source, raw.Message)
		log.Timestamp = timestamp
		switch {
		case alert.Device != nil:
			log.SourceDeviceUUID = alert.Device.ContextUUID
		case len(alert.Flows) > 0:
			log.SourceIP = alert.Flows[0].SourceIP
		default:
			n.logger.Debugf("Raw alert %q carries a log line without an origin, dropping it", raw.Name)
			log = nil
		}
		alert.Log = log
	}

	if err := alert.Validate(); err != nil {
		metrics.AlertsRejected.WithLabelValues("invalid").Inc()
		return nil, err
	}

	metrics.AlertsIngested.WithLabelValues(alert.Source).Inc()
	return alert, nil
}

// NormalizeBatch converts a batch of payloads, skipping bad ones
func (n *Normalizer) NormalizeBatch(payloads [][]byte) []*core.Alert {
	alerts := make([]*core.Alert, 0, len(payloads))
	for i, payload := range payloads {
		alert, err := n.Normalize(payload)
		if err != nil {
			n.logger.Errorf("Skipping raw alert %d: %v", i, err)
			continue
		}
		alerts = append(alerts, alert)
	}
	return alerts
}
