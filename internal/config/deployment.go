package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read at startup
const (
	EnvBackendURL = "ZIP_UPLOADER_BACKEND"
	EnvConfigPath = "ZIP_UPLOADER_CONFIG"
)

// DefaultBackendURL is used when nothing else configures the backend
const DefaultBackendURL = "http://localhost:8000"

// Deployment is the install-time configuration shipped next to the binary
type Deployment struct {
	BackendURL     string        `yaml:"backend_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
}

// DefaultDeployment returns the built-in deployment values
func DefaultDeployment() Deployment {
	return Deployment{
		BackendURL:     DefaultBackendURL,
		RequestTimeout: DefaultRequestTimeout * time.Second,
		LogLevel:       "info",
		LogFormat:      "console",
	}
}

// LoadDeployment reads a YAML file over the defaults. An empty path yields
// the defaults.
func LoadDeployment(path string) (Deployment, error) {
	if path == "" {
		return DefaultDeployment(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return DefaultDeployment(), fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer file.Close()

	d, err := ParseDeployment(file)
	if err != nil {
		return DefaultDeployment(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return d, nil
}

// ParseDeployment decodes YAML from r; missing keys keep their defaults
func ParseDeployment(r io.Reader) (Deployment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return DefaultDeployment(), err
	}

	d := DefaultDeployment()
	if err := yaml.Unmarshal(data, &d); err != nil {
		return DefaultDeployment(), err
	}

	if d.BackendURL == "" {
		d.BackendURL = DefaultBackendURL
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = DefaultRequestTimeout * time.Second
	}
	return d, nil
}

// ApplyEnv overrides deployment values from the environment
func (d Deployment) ApplyEnv(getenv func(string) string) Deployment {
	if v := strings.TrimSpace(getenv(EnvBackendURL)); v != "" {
		d.BackendURL = v
	}
	return d
}

// ResolveBackendURL picks the backend origin: user preference, then the
// deployment value (env already applied), then the default.
func ResolveBackendURL(preference string, d Deployment) string {
	if v := strings.TrimSpace(preference); v != "" {
		return v
	}
	if v := strings.TrimSpace(d.BackendURL); v != "" {
		return v
	}
	return DefaultBackendURL
}
