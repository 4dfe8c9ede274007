package moderation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// denylistFile is the on-disk format:
//
//	patterns:
//	  - badword
//	  - vulgar
type denylistFile struct {
	Patterns []string `yaml:"patterns"`
}

// LoadDenylist reads patterns from a YAML file. An empty path returns
// DefaultDenylist.
func LoadDenylist(path string) ([]string, error) {
	if path == "" {
		return append([]string(nil), DefaultDenylist...), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read denylist: %w", err)
	}

	var f denylistFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse denylist: %w", err)
	}
	if len(f.Patterns) == 0 {
		return nil, fmt.Errorf("denylist %s has no patterns", path)
	}

	return f.Patterns, nil
}
