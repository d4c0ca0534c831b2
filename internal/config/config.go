// Package config loads the signer configuration from a YAML file.
// The keystore password never appears in the file; only the name of
// the environment variable carrying it does.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration for the jades tool.
type Config struct {
	Keystore KeystoreSettings `yaml:"keystore"`
	Server   ServerSettings   `yaml:"server"`

	// AuditLog is the path of the JSONL audit log. Empty disables
	// audit logging.
	AuditLog string `yaml:"audit_log"`
}

// KeystoreSettings locates the PKCS#12 container and its password.
type KeystoreSettings struct {
	// Path is the PFX file path.
	Path string `yaml:"path"`

	// PasswordEnv is the name of the environment variable containing
	// the container password.
	PasswordEnv string `yaml:"password_env"`
}

// ServerSettings holds the HTTP server configuration for serve mode.
type ServerSettings struct {
	Host         string   `yaml:"host"`
	Port         int      `yaml:"port"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`
}

// Duration is a time.Duration that parses YAML values like "5s" or
// "1m30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Keystore.Path == "" {
		return fmt.Errorf("keystore.path is required")
	}
	if c.Keystore.PasswordEnv == "" {
		return fmt.Errorf("keystore.password_env is required (password must be provided via environment variable)")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}

// Password retrieves the keystore password from the environment.
func (k *KeystoreSettings) Password() (string, error) {
	password := os.Getenv(k.PasswordEnv)
	if password == "" {
		return "", fmt.Errorf("environment variable %s is not set or empty", k.PasswordEnv)
	}
	return password, nil
}

// Address returns the listen address, defaulting to localhost:8440.
func (s *ServerSettings) Address() string {
	host := s.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := s.Port
	if port == 0 {
		port = 8440
	}
	return fmt.Sprintf("%s:%d", host, port)
}
