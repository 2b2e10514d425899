package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aegis/soar"
)

func TestLoadPlaybookSettings_MissingFileIsNotAnError(t *testing.T) {
	settings, err := LoadPlaybookSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Nil(t, settings)
}

func TestLoadPlaybookSettings_ParsesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playbooks.yaml")
	data := []byte(`playbooks:
  - name: PB_PHISHING
    enabled: true
  - name: PB_MALWARE
    enabled: false
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	settings, err := LoadPlaybookSettings(path)
	require.NoError(t, err)
	require.Len(t, settings, 2)
	assert.Equal(t, "PB_PHISHING", settings[0].Name)
	assert.True(t, settings[0].Enabled)
	assert.Equal(t, "PB_MALWARE", settings[1].Name)
	assert.False(t, settings[1].Enabled)
}

func TestLoadPlaybookSettings_RejectsDuplicatesAndEmptyNames(t *testing.T) {
	dir := t.TempDir()

	dup := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(dup, []byte(`playbooks:
  - name: PB_A
    enabled: true
  - name: PB_A
    enabled: false
`), 0o644))
	_, err := LoadPlaybookSettings(dup)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte(`playbooks:
  - name: ""
    enabled: true
`), 0o644))
	_, err = LoadPlaybookSettings(empty)
	assert.Error(t, err)
}

func TestLoadPlaybookSettings_RejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("playbooks: [not: {closed"), 0o644))

	_, err := LoadPlaybookSettings(path)
	assert.Error(t, err)
}

func TestSavePlaybookSettings_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playbooks.yaml")

	in := []soar.PlaybookSetting{
		{Name: "PB_PHISHING", Enabled: true},
		{Name: "PB_MALWARE", Enabled: false},
	}
	require.NoError(t, SavePlaybookSettings(path, in))

	out, err := LoadPlaybookSettings(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
