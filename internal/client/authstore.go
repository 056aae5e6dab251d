package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

const DefaultBaseURL = "http://localhost:8080"

// AuthModel is the persisted session.
type AuthModel struct {
	BaseURL      string `yaml:"base_url"`
	Email        string `yaml:"email,omitempty"`
	AccessToken  string `yaml:"access_token,omitempty"`
	RefreshToken string `yaml:"refresh_token,omitempty"`
}

// AuthStore keeps the AuthModel in a YAML file.
type AuthStore struct {
	path string

	mu    sync.RWMutex
	model AuthModel
}

// DefaultConfigPath is $JOBDASH_CONFIG or ~/.config/jobdash/config.yaml.
func DefaultConfigPath() (string, error) {
	if p := os.Getenv("JOBDASH_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "jobdash", "config.yaml"), nil
}

// LoadAuthStore reads path. A missing file is an empty, logged-out session.
func LoadAuthStore(path string) (*AuthStore, error) {
	s := &AuthStore{path: path, model: AuthModel{BaseURL: DefaultBaseURL}}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var m AuthModel
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(b))), &m); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if m.BaseURL == "" {
		m.BaseURL = DefaultBaseURL
	}
	s.model = m
	return s, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with its value. Unset variables stay as is.
func expandEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		if v := os.Getenv(match[2 : len(match)-1]); v != "" {
			return v
		}
		return match
	})
}

func (s *AuthStore) Path() string { return s.path }

func (s *AuthStore) Model() AuthModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

func (s *AuthStore) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model.AccessToken != ""
}

// SetTokens replaces the tokens and saves. An empty refresh token keeps the
// current one.
func (s *AuthStore) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model.AccessToken = access
	if refresh != "" {
		s.model.RefreshToken = refresh
	}
	return s.save()
}

func (s *AuthStore) Login(email, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model.Email = email
	s.model.AccessToken = access
	s.model.RefreshToken = refresh
	return s.save()
}

// Clear drops the session and keeps the server address.
func (s *AuthStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = AuthModel{BaseURL: s.model.BaseURL}
	return s.save()
}

func (s *AuthStore) SetBaseURL(u string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model.BaseURL = u
	return s.save()
}

func (s *AuthStore) save() error {
	b, err := yaml.Marshal(s.model)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
