package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dgellow/openid-selector/internal/picker"
)

// VersionPrefix is the accepted config version family
const VersionPrefix = "v0.0.1-DEV_EDITION"

// Defaults for the server section
const (
	DefaultName          = "openid-selector"
	DefaultBasePath      = "/"
	DefaultHiddenFieldID = "openid_identifier"
)

// Secret is a string type that redacts itself when printed
type Secret string

// String implements fmt.Stringer to redact the secret
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "***"
}

// MarshalJSON implements json.Marshaler to prevent secrets in JSON logs
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return json.Marshal("")
	}
	return json.Marshal("***")
}

// Config is the complete application configuration
type Config struct {
	Version   string          `json:"version"`
	Server    ServerConfig    `json:"server"`
	Picker    picker.Config   `json:"picker"`
	Providers ProvidersConfig `json:"providers"`
}

// ServerConfig configures the HTTP front of the picker
type ServerConfig struct {
	Addr     string `json:"addr"`
	BaseURL  string `json:"baseURL"`
	BasePath string `json:"basePath"`
	Name     string `json:"name"`

	// VerifyURL receives the chosen identifier once the form submits.
	VerifyURL string `json:"verifyURL"`
	// HiddenFieldID names the form field carrying the identifier.
	HiddenFieldID string `json:"hiddenFieldId"`
	// StaticDir is served under <basePath>static/ when set (sprites, icons).
	StaticDir string `json:"staticDir"`

	CSRFSecret Secret `json:"csrfSecret"`
}

// ProvidersConfig points at the provider tables
type ProvidersConfig struct {
	// File is a YAML provider document; empty uses the built-in table.
	File  string `json:"file,omitempty"`
	Watch bool   `json:"watch,omitempty"`
}

// RawConfigValue is a resolved config value
type RawConfigValue struct {
	value string
}

// String returns the resolved value
func (r *RawConfigValue) String() string {
	return r.value
}

// ParseConfigValue parses a JSON value that is either a plain string or an
// {"$env": "NAME"} reference
func ParseConfigValue(raw json.RawMessage) (*RawConfigValue, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return &RawConfigValue{value: str}, nil
	}

	var ref map[string]string
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil, fmt.Errorf("config value must be string or reference object")
	}

	envVar, ok := ref["$env"]
	if !ok {
		return nil, fmt.Errorf("unknown reference type in config value")
	}
	value := os.Getenv(envVar)
	if value == "" {
		return nil, fmt.Errorf("environment variable %s not set", envVar)
	}
	// Strip surrounding quotes if present (only matching pairs)
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
	}
	return &RawConfigValue{value: value}, nil
}
