package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// minCSRFSecretLength keeps HKDF input from being trivially guessable
const minCSRFSecretLength = 16

// Load loads and processes the config with immediate env var resolution
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse processes config JSON already read into memory
func Parse(data []byte) (Config, error) {
	var rawConfig map[string]any
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		return Config{}, fmt.Errorf("parsing config JSON: %w", err)
	}

	version, ok := rawConfig["version"].(string)
	if !ok {
		return Config{}, fmt.Errorf("config version is required")
	}
	if !strings.HasPrefix(version, VersionPrefix) {
		return Config{}, fmt.Errorf("unsupported config version: %s", version)
	}

	if err := validateRawConfig(rawConfig); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	// The custom UnmarshalJSON methods resolve env vars immediately
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if _, ok := rawConfig["server"]; !ok {
		config.Server.applyDefaults()
	}

	if err := ValidateConfig(&config); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// validateRawConfig enforces that secrets come from the environment
func validateRawConfig(rawConfig map[string]any) error {
	server, ok := rawConfig["server"].(map[string]any)
	if !ok {
		return nil
	}
	value, exists := server["csrfSecret"]
	if !exists {
		return nil
	}
	if _, isString := value.(string); isString {
		return fmt.Errorf("csrfSecret must use environment variable reference for security")
	}
	if refMap, isMap := value.(map[string]any); isMap {
		if _, hasEnv := refMap["$env"]; !hasEnv {
			return fmt.Errorf("csrfSecret must use {\"$env\": \"VAR_NAME\"} format")
		}
	}
	return nil
}

// ValidateConfig validates the resolved configuration
func ValidateConfig(config *Config) error {
	s := config.Server
	if s.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if s.VerifyURL == "" {
		return fmt.Errorf("server.verifyURL is required")
	}
	if _, err := url.Parse(s.VerifyURL); err != nil {
		return fmt.Errorf("server.verifyURL is invalid: %w", err)
	}
	if s.BaseURL != "" {
		u, err := url.Parse(s.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("server.baseURL must be an absolute URL")
		}
	}
	if !strings.HasPrefix(s.BasePath, "/") {
		return fmt.Errorf("server.basePath must start with '/'")
	}
	if len(s.CSRFSecret) < minCSRFSecretLength {
		return fmt.Errorf("server.csrfSecret must be at least %d bytes", minCSRFSecretLength)
	}

	p := config.Picker
	if p.CookieExpires != nil && *p.CookieExpires < 0 {
		return fmt.Errorf("picker.cookie_expires must not be negative")
	}
	if p.CookiePath != "" && !strings.HasPrefix(p.CookiePath, "/") {
		return fmt.Errorf("picker.cookie_path must start with '/'")
	}
	if strings.ContainsAny(p.CookieName, "=;, \t") {
		return fmt.Errorf("picker.cookie_name contains invalid characters")
	}
	return nil
}
