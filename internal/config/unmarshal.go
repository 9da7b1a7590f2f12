package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UnmarshalJSON resolves env references and applies server defaults
func (s *ServerConfig) UnmarshalJSON(data []byte) error {
	type rawServer struct {
		Addr          json.RawMessage `json:"addr"`
		BaseURL       json.RawMessage `json:"baseURL"`
		BasePath      string          `json:"basePath"`
		Name          string          `json:"name"`
		VerifyURL     json.RawMessage `json:"verifyURL"`
		HiddenFieldID string          `json:"hiddenFieldId"`
		StaticDir     string          `json:"staticDir"`
		CSRFSecret    json.RawMessage `json:"csrfSecret"`
	}

	var raw rawServer
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.BasePath = raw.BasePath
	s.Name = raw.Name
	s.HiddenFieldID = raw.HiddenFieldID
	s.StaticDir = raw.StaticDir

	resolve := func(name string, value json.RawMessage, dst *string) error {
		if value == nil {
			return nil
		}
		parsed, err := ParseConfigValue(value)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", name, err)
		}
		*dst = parsed.value
		return nil
	}

	if err := resolve("addr", raw.Addr, &s.Addr); err != nil {
		return err
	}
	if err := resolve("baseURL", raw.BaseURL, &s.BaseURL); err != nil {
		return err
	}
	if err := resolve("verifyURL", raw.VerifyURL, &s.VerifyURL); err != nil {
		return err
	}
	var secret string
	if err := resolve("csrfSecret", raw.CSRFSecret, &secret); err != nil {
		return err
	}
	s.CSRFSecret = Secret(secret)

	s.applyDefaults()
	return nil
}

func (s *ServerConfig) applyDefaults() {
	if s.Name == "" {
		s.Name = DefaultName
	}
	if s.BasePath == "" {
		s.BasePath = DefaultBasePath
	}
	if !strings.HasSuffix(s.BasePath, "/") {
		s.BasePath += "/"
	}
	if s.HiddenFieldID == "" {
		s.HiddenFieldID = DefaultHiddenFieldID
	}
}
