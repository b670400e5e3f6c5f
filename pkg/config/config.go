// Package config loads azurechat settings from the process environment.
//
// The four Azure OpenAI settings are required and only ever read from the
// environment (optionally seeded from a .env file). Non-secret settings may
// also come from a TOML file named by AZURECHAT_CONFIG; environment values
// win over file values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvModel    = "AZURE_OPENAI_MODEL"
	EnvEndpoint = "AZURE_OPENAI_ENDPOINT"
	EnvKey      = "AZURE_OPENAI_KEY"
	EnvVersion  = "AZURE_OPENAI_VERSION"

	EnvListen     = "AZURECHAT_LISTEN"
	EnvDebug      = "AZURECHAT_DEBUG"
	EnvConfigFile = "AZURECHAT_CONFIG"

	DefaultListenAddr = ":32123"
)

// Config is the full azurechat configuration.
type Config struct {
	Azure Azure

	// Address the chat page listens on (e.g., ":32123")
	ListenAddr string

	// Debug enables debug logging
	Debug bool

	// Persona overrides the assistant's system message. Empty selects the
	// built-in persona.
	Persona string
}

// Azure holds the connection parameters for an Azure OpenAI deployment.
type Azure struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
}

// Validate reports a *ConfigurationError naming every empty parameter.
func (a Azure) Validate() error {
	var missing []string
	check := func(name, val string) {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, name)
		}
	}

	check(EnvModel, a.Deployment)
	check(EnvEndpoint, a.Endpoint)
	check(EnvKey, a.APIKey)
	check(EnvVersion, a.APIVersion)

	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}

// ConfigurationError is returned when required startup settings are missing
// or invalid. It is fatal: nothing should be served without valid settings.
type ConfigurationError struct {
	Missing []string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return "missing required configuration: " + strings.Join(e.Missing, ", ")
	}
	if e.Reason != "" {
		return "invalid configuration: " + e.Reason
	}
	return "invalid configuration"
}

// Load reads the configuration. A .env file in the working directory is
// loaded first when present; variables already set in the environment are
// not overridden by it.
func Load() (*Config, error) {
	// Missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr: DefaultListenAddr,
	}

	if path := os.Getenv(EnvConfigFile); path != "" {
		fc, err := loadFile(path)
		if err != nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("reading %s: %v", path, err)}
		}
		fc.apply(cfg)
	}

	cfg.Azure = Azure{
		Deployment: os.Getenv(EnvModel),
		Endpoint:   os.Getenv(EnvEndpoint),
		APIKey:     os.Getenv(EnvKey),
		APIVersion: os.Getenv(EnvVersion),
	}
	cfg.ListenAddr = getEnvOrDefault(EnvListen, cfg.ListenAddr)

	debug, err := getEnvAsBoolOrDefault(EnvDebug, cfg.Debug)
	if err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("%s: %v", EnvDebug, err)}
	}
	cfg.Debug = debug

	if err := cfg.Azure.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	return strconv.ParseBool(val)
}
