package core

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Hash hex lengths accepted on file and process contexts
const (
	md5HexLen    = 32
	sha1HexLen   = 40
	sha256HexLen = 64
)

// ContextFile describes a file observed on disk or in transit
type ContextFile struct {
	ContextUUID string    `json:"uuid"`
	Timestamp   time.Time `json:"timestamp"`

	Name        string `json:"name"`
	Path        string `json:"path,omitempty"`
	Extension   string `json:"extension,omitempty"`
	Size        int64  `json:"size,omitempty"`
	MD5         string `json:"md5,omitempty"`
	SHA1        string `json:"sha1,omitempty"`
	SHA256      string `json:"sha256,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
	IsDirectory bool   `json:"is_directory"`
}

// NewContextFile creates a file context and derives the extension from the
// file name. Leading "/" and "." are stripped from the name; a size of -1
// means unknown.
func NewContextFile(name string) *ContextFile {
	name = strings.TrimLeft(name, "/.")
	f := &ContextFile{
		ContextUUID: uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		Name:        name,
		Size:        -1,
	}
	f.Extension = strings.TrimPrefix(filepath.Ext(name), ".")
	return f
}

// UUID returns the context identity
func (f *ContextFile) UUID() string { return f.ContextUUID }

// Time returns the timeline timestamp
func (f *ContextFile) Time() time.Time { return f.Timestamp }

// Indicators returns the file hashes
func (f *ContextFile) Indicators() *IndicatorSet {
	set := NewIndicatorSet()
	set.AddAll(IndicatorHash, f.MD5, f.SHA1, f.SHA256)
	return set
}

// Validate requires a name and well-formed hash lengths
func (f *ContextFile) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("file %s is missing a name", f.ContextUUID)
	}
	if f.Size < -1 {
		return fmt.Errorf("file %s has size %d below -1", f.Name, f.Size)
	}
	if err := validateHashLengths(f.Name, f.MD5, f.SHA1, f.SHA256); err != nil {
		return err
	}
	return nil
}

func (f *ContextFile) String() string {
	return fmt.Sprintf("File(%s, size=%d)", f.Name, f.Size)
}

var _ Context = (*ContextFile)(nil)

// validateHashLengths enforces MD5/SHA1/SHA256 hex lengths where the hash
// is present at all.
func validateHashLengths(subject, md5Hash, sha1Hash, sha256Hash string) error {
	if md5Hash != "" && len(md5Hash) != md5HexLen {
		return fmt.Errorf("%s: MD5 hash has length %d, want %d", subject, len(md5Hash), md5HexLen)
	}
	if sha1Hash != "" && len(sha1Hash) != sha1HexLen {
		return fmt.Errorf("%s: SHA1 hash has length %d, want %d", subject, len(sha1Hash), sha1HexLen)
	}
	if sha256Hash != "" && len(sha256Hash) != sha256HexLen {
		return fmt.Errorf("%s: SHA256 hash has length %d, want %d", subject, len(sha256Hash), sha256HexLen)
	}
	return nil
}
