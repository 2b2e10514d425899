package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"aegis/soar"
)

// playbooksFile is the on-disk shape of the playbook settings YAML
type playbooksFile struct {
	Playbooks []soar.PlaybookSetting `yaml:"playbooks"`
}

// LoadPlaybookSettings reads the playbook enablement file. A missing file is
// not an error: every registered playbook is then enabled by default.
func LoadPlaybookSettings(path string) ([]soar.PlaybookSetting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read playbook settings: %w", err)
	}

	var file playbooksFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse playbook settings: %w", err)
	}

	seen := make(map[string]bool, len(file.Playbooks))
	for _, setting := range file.Playbooks {
		if setting.Name == "" {
			return nil, fmt.Errorf("playbook settings: entry with empty name")
		}
		if seen[setting.Name] {
			return nil, fmt.Errorf("playbook settings: duplicate entry %q", setting.Name)
		}
		seen[setting.Name] = true
	}

	return file.Playbooks, nil
}

// SavePlaybookSettings writes the playbook enablement file
func SavePlaybookSettings(path string, settings []soar.PlaybookSetting) error {
	data, err := yaml.Marshal(playbooksFile{Playbooks: settings})
	if err != nil {
		return fmt.Errorf("failed to encode playbook settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write playbook settings: %w", err)
	}
	return nil
}
