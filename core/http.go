package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DNSQuery describes a DNS lookup observed in relation to an alert
type DNSQuery struct {
	ContextUUID string    `json:"uuid"`
	Timestamp   time.Time `json:"timestamp"`

	RelatedAlertUUID string `json:"related_alert_uuid,omitempty"`
	Type             string `json:"type"` // A, AAAA, CNAME, TXT, ...
	Query            string `json:"query"`
	ResolvedIP       string `json:"resolved_ip,omitempty"`
	HasResponse      bool   `json:"has_response"`
}

// NewDNSQuery creates a DNS query context stamped with the current time
func NewDNSQuery(queryType, query string) *DNSQuery {
	return &DNSQuery{
		ContextUUID: uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		Type:        queryType,
		Query:       query,
	}
}

// SetResolvedIP records the answer and flips HasResponse
func (d *DNSQuery) SetResolvedIP(ip string) {
	d.ResolvedIP = ip
	d.HasResponse = ip != ""
}

// UUID returns the context identity
func (d *DNSQuery) UUID() string { return d.ContextUUID }

// Time returns the timeline timestamp
func (d *DNSQuery) Time() time.Time { return d.Timestamp }

// Indicators returns the queried domain and, when present, the resolved IP
func (d *DNSQuery) Indicators() *IndicatorSet {
	set := NewIndicatorSet()
	set.Add(IndicatorDomain, d.Query)
	set.Add(IndicatorIP, d.ResolvedIP)
	return set
}

// Validate requires the query type and name
func (d *DNSQuery) Validate() error {
	if d.Type == "" {
		return fmt.Errorf("dns query %s is missing a type", d.ContextUUID)
	}
	if d.Query == "" {
		return fmt.Errorf("dns query %s is missing the queried name", d.ContextUUID)
	}
	return nil
}

func (d *DNSQuery) String() string {
	return fmt.Sprintf("DNSQuery(%s %s -> %s)", d.Type, d.Query, d.ResolvedIP)
}

var _ Context = (*DNSQuery)(nil)

// HTTP describes an HTTP(S) request observed in relation to an alert
type HTTP struct {
	ContextUUID string    `json:"uuid"`
	Timestamp   time.Time `json:"timestamp"`

	RelatedAlertUUID string `json:"related_alert_uuid,omitempty"`
	Method           string `json:"method"`
	Type             string `json:"type"` // HTTP or HTTPS
	Host             string `json:"host"`
	Port             int    `json:"port,omitempty"`
	Path             string `json:"path,omitempty"`
	FullURL          string `json:"full_url,omitempty"`
	UserAgent        string `json:"user_agent,omitempty"`
	StatusCode       int    `json:"status_code,omitempty"`
	RequestBodySize  int64  `json:"request_body_size,omitempty"`

	File        *ContextFile `json:"file,omitempty"`
	Certificate *Certificate `json:"certificate,omitempty"`
}

// NewHTTP creates an HTTP context and normalizes the URL fields. A mismatch
// between a supplied full URL and the one derived from type/host/path is
// not fatal: the supplied value is kept and a warning is logged.
func NewHTTP(logger *zap.SugaredLogger, method, httpType, host string) *HTTP {
	h := &HTTP{
		ContextUUID: uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		Method:      method,
		Type:        httpType,
		Host:        host,
	}
	h.Normalize(logger)
	return h
}

// Normalize prepends the leading slash to the path and derives FullURL when
// absent. Call it again after filling Path or FullURL on a literal struct.
func (h *HTTP) Normalize(logger *zap.SugaredLogger) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if h.Path != "" && !strings.HasPrefix(h.Path, "/") {
		h.Path = "/" + h.Path
	}

	derived := strings.ToLower(h.Type) + "://" + h.Host + h.Path
	if h.FullURL == "" {
		h.FullURL = derived
		return
	}
	if h.FullURL != derived {
		logger.Warnf("HTTP context %s: supplied full URL %q does not match derived %q, keeping supplied value",
			h.ContextUUID, h.FullURL, derived)
	}
}

// UUID returns the context identity
func (h *HTTP) UUID() string { return h.ContextUUID }

// Time returns the timeline timestamp
func (h *HTTP) Time() time.Time { return h.Timestamp }

// Indicators returns host, URL and any nested file/certificate indicators
func (h *HTTP) Indicators() *IndicatorSet {
	set := NewIndicatorSet()
	set.Add(IndicatorDomain, h.Host)
	set.Add(IndicatorURL, h.FullURL)
	if h.File != nil {
		set.Merge(h.File.Indicators())
	}
	if h.Certificate != nil {
		set.Merge(h.Certificate.Indicators())
	}
	return set
}

// Validate requires method, scheme type and host
func (h *HTTP) Validate() error {
	if h.Method == "" {
		return fmt.Errorf("http context %s is missing the method", h.ContextUUID)
	}
	if h.Type != "HTTP" && h.Type != "HTTPS" {
		return fmt.Errorf("http context %s has type %q, want HTTP or HTTPS", h.ContextUUID, h.Type)
	}
	if h.Host == "" {
		return fmt.Errorf("http context %s is missing the host", h.ContextUUID)
	}
	if h.StatusCode != 0 && (h.StatusCode < 100 || h.StatusCode > 599) {
		return fmt.Errorf("http context %s has invalid status code %d", h.ContextUUID, h.StatusCode)
	}
	return nil
}

func (h *HTTP) String() string {
	return fmt.Sprintf("HTTP(%s %s, status=%d)", h.Method, h.FullURL, h.StatusCode)
}

var _ Context = (*HTTP)(nil)
