package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile represents the remembered CLI state (selected scan agent).
type Profile struct {
	// AgentName is a human-readable label for the selected agent (for display).
	AgentName string `yaml:"agent_name,omitempty"`
	// AgentURL is the base URL of the selected scan agent.
	AgentURL string `yaml:"agent_url,omitempty"`
	// UpdatedAt is when the profile was last modified.
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

// IsEmpty returns true if no agent is selected.
func (p *Profile) IsEmpty() bool {
	return p.AgentURL == ""
}

// HasAgent returns true if an agent is selected.
func (p *Profile) HasAgent() bool {
	return p.AgentURL != ""
}

// Clear removes the agent selection.
func (p *Profile) Clear() {
	p.AgentName = ""
	p.AgentURL = ""
	p.UpdatedAt = time.Now()
}

// SetAgent sets the selected agent.
func (p *Profile) SetAgent(name, agentURL string) {
	p.AgentName = name
	p.AgentURL = agentURL
	p.UpdatedAt = time.Now()
}

// String returns a human-readable representation of the profile.
func (p *Profile) String() string {
	if p.IsEmpty() {
		return "(no agent selected)"
	}
	name := p.AgentName
	if name == "" {
		name = hostOf(p.AgentURL)
	}
	return fmt.Sprintf("agent:%s (%s)", name, p.AgentURL)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

// ProfileStore manages loading and saving the CLI profile.
type ProfileStore struct {
	path string
	mu   sync.RWMutex
}

// NewProfileStore creates a new profile store.
// If path is empty, uses the default path (~/.config/portscout/profile.yaml).
func NewProfileStore(path string) *ProfileStore {
	if path == "" {
		homeDir, _ := os.UserHomeDir()
		path = filepath.Join(homeDir, ".config", "portscout", "profile.yaml")
	}
	return &ProfileStore{path: path}
}

// DefaultProfileStore returns a profile store using the default path.
func DefaultProfileStore() *ProfileStore {
	return NewProfileStore("")
}

// Path returns the profile file path.
func (s *ProfileStore) Path() string {
	return s.path
}

// Load reads the profile from disk.
// Returns an empty profile if the file doesn't exist.
func (s *ProfileStore) Load() (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile := &Profile{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return profile, nil
		}
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile file: %w", err)
	}

	return profile, nil
}

// Save writes the profile to disk.
func (s *ProfileStore) Save(profile *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}

	data, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to serialize profile: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile file: %w", err)
	}

	return nil
}

// Clear removes the profile file.
func (s *ProfileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove profile file: %w", err)
	}
	return nil
}
