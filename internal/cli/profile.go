package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// DefaultProfileName is looked up in the home directory
const DefaultProfileName = ".contact.yaml"

// DefaultEndpoint is the local relay
const DefaultEndpoint = "http://localhost:8080/api/contact"

// Profile holds reusable sender details and the relay location
type Profile struct {
	Endpoint string        `yaml:"endpoint,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
	Name     string        `yaml:"name,omitempty"`
	Email    string        `yaml:"email,omitempty"`
	Subject  string        `yaml:"subject,omitempty"`
}

// DefaultProfilePath returns ~/.contact.yaml, or "" without a home dir
func DefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultProfileName)
}

// LoadProfile reads a profile file. A missing file yields an empty
// profile unless required is set.
func LoadProfile(path string, required bool) (*Profile, error) {
	var p Profile
	if path == "" {
		return &p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return &p, nil
		}
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return &p, nil
}

// Resolve layers flags over the file profile over defaults. Non-empty
// values win from left to right.
func Resolve(flags, file *Profile) (*Profile, error) {
	out := *flags
	if file != nil {
		if err := mergo.Merge(&out, *file); err != nil {
			return nil, fmt.Errorf("failed to merge profile: %w", err)
		}
	}
	if err := mergo.Merge(&out, Profile{Endpoint: DefaultEndpoint}); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return &out, nil
}
