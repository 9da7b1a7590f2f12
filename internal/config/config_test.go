package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSecret(t *testing.T) {
	s := Secret("hunter2hunter2")
	assert.Equal(t, "***", s.String())
	assert.Equal(t, "***", fmt.Sprintf("%v", s))

	data, err := json.Marshal(struct {
		S Secret `json:"s"`
	}{S: s})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"***"}`, string(data))

	assert.Equal(t, "", Secret("").String())
}

func TestParseConfigValue(t *testing.T) {
	t.Setenv("PICKER_TEST_VALUE", `"quoted"`)

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr string
	}{
		{name: "plain string", raw: `"https://rp.example.com"`, want: "https://rp.example.com"},
		{name: "env ref strips quotes", raw: `{"$env": "PICKER_TEST_VALUE"}`, want: "quoted"},
		{name: "missing env", raw: `{"$env": "PICKER_TEST_MISSING"}`, wantErr: "PICKER_TEST_MISSING not set"},
		{name: "unknown ref", raw: `{"$userToken": "x"}`, wantErr: "unknown reference type"},
		{name: "wrong type", raw: `42`, wantErr: "must be string or reference object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfigValue(json.RawMessage(tt.raw))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("CSRF_SECRET", testSecret)
	t.Setenv("VERIFY_URL", "https://rp.example.com/verify")

	path := writeConfig(t, `{
		"version": "v0.0.1-DEV_EDITION",
		"server": {
			"addr": ":8080",
			"basePath": "/login",
			"verifyURL": {"$env": "VERIFY_URL"},
			"csrfSecret": {"$env": "CSRF_SECRET"}
		},
		"picker": {
			"demo": true,
			"cookie_expires": 30,
			"locale": "de",
			"show_providers": ["google", "aol"]
		},
		"providers": {"file": "providers.yaml", "watch": true}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "/login/", cfg.Server.BasePath)
	assert.Equal(t, DefaultName, cfg.Server.Name)
	assert.Equal(t, DefaultHiddenFieldID, cfg.Server.HiddenFieldID)
	assert.Equal(t, "https://rp.example.com/verify", cfg.Server.VerifyURL)
	assert.Equal(t, Secret(testSecret), cfg.Server.CSRFSecret)

	assert.True(t, cfg.Picker.Demo)
	require.NotNil(t, cfg.Picker.CookieExpires)
	assert.Equal(t, 30, *cfg.Picker.CookieExpires)
	assert.Equal(t, "de", cfg.Picker.Locale)
	assert.Equal(t, []string{"google", "aol"}, cfg.Picker.ShowProviders)

	assert.Equal(t, "providers.yaml", cfg.Providers.File)
	assert.True(t, cfg.Providers.Watch)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("CSRF_SECRET", testSecret)
	t.Setenv("SHORT_SECRET", "short")

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "invalid json",
			body:    `{`,
			wantErr: "parsing config JSON",
		},
		{
			name:    "missing version",
			body:    `{"server": {}}`,
			wantErr: "config version is required",
		},
		{
			name:    "unsupported version",
			body:    `{"version": "v2"}`,
			wantErr: "unsupported config version",
		},
		{
			name:    "literal secret",
			body:    `{"version": "v0.0.1-DEV_EDITION", "server": {"addr": ":1", "verifyURL": "/v", "csrfSecret": "literal"}}`,
			wantErr: "csrfSecret must use environment variable reference",
		},
		{
			name:    "missing addr",
			body:    `{"version": "v0.0.1-DEV_EDITION", "server": {"verifyURL": "/v", "csrfSecret": {"$env": "CSRF_SECRET"}}}`,
			wantErr: "server.addr is required",
		},
		{
			name:    "missing verify url",
			body:    `{"version": "v0.0.1-DEV_EDITION", "server": {"addr": ":1", "csrfSecret": {"$env": "CSRF_SECRET"}}}`,
			wantErr: "server.verifyURL is required",
		},
		{
			name:    "short secret",
			body:    `{"version": "v0.0.1-DEV_EDITION", "server": {"addr": ":1", "verifyURL": "/v", "csrfSecret": {"$env": "SHORT_SECRET"}}}`,
			wantErr: "csrfSecret must be at least",
		},
		{
			name:    "relative base url",
			body:    `{"version": "v0.0.1-DEV_EDITION", "server": {"addr": ":1", "baseURL": "localhost", "verifyURL": "/v", "csrfSecret": {"$env": "CSRF_SECRET"}}}`,
			wantErr: "baseURL must be an absolute URL",
		},
		{
			name:    "negative cookie lifetime",
			body:    `{"version": "v0.0.1-DEV_EDITION", "server": {"addr": ":1", "verifyURL": "/v", "csrfSecret": {"$env": "CSRF_SECRET"}}, "picker": {"cookie_expires": -1}}`,
			wantErr: "cookie_expires must not be negative",
		},
		{
			name:    "bad cookie name",
			body:    `{"version": "v0.0.1-DEV_EDITION", "server": {"addr": ":1", "verifyURL": "/v", "csrfSecret": {"$env": "CSRF_SECRET"}}, "picker": {"cookie_name": "a;b"}}`,
			wantErr: "cookie_name contains invalid characters",
		},
		{
			name:    "unset env",
			body:    `{"version": "v0.0.1-DEV_EDITION", "server": {"addr": ":1", "verifyURL": "/v", "csrfSecret": {"$env": "PICKER_UNSET_SECRET"}}}`,
			wantErr: "PICKER_UNSET_SECRET not set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestParse_ZeroCookieExpiresIsKept(t *testing.T) {
	t.Setenv("CSRF_SECRET", testSecret)

	cfg, err := Parse([]byte(`{
		"version": "v0.0.1-DEV_EDITION",
		"server": {"addr": ":1", "verifyURL": "/v", "csrfSecret": {"$env": "CSRF_SECRET"}},
		"picker": {"cookie_expires": 0}
	}`))
	require.NoError(t, err)
	require.NotNil(t, cfg.Picker.CookieExpires)
	assert.Equal(t, 0, *cfg.Picker.CookieExpires)
	assert.Zero(t, cfg.Picker.WithDefaults().CookieLifetime())
}

func TestValidateFile(t *testing.T) {
	t.Run("valid example", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, WriteExample(path))

		result, err := ValidateFile(path)
		require.NoError(t, err)
		assert.True(t, result.IsValid(), "errors: %v", result.Errors)
		assert.Empty(t, result.Warnings)
	})

	t.Run("reports problems", func(t *testing.T) {
		path := writeConfig(t, `{
			"version": "v1",
			"server": {
				"addr": ":8080",
				"basePath": "login",
				"csrfSecret": "plain",
				"verifyURL": "${VERIFY_URL}",
				"colour": "blue"
			},
			"picker": {"cookie_expires": -3, "image_title": "Sign in", "show_providers": "google"},
			"providers": {"file": "/nonexistent/providers.yaml"}
		}`)

		result, err := ValidateFile(path)
		require.NoError(t, err)
		assert.False(t, result.IsValid())

		errorPaths := paths(result.Errors)
		assert.Contains(t, errorPaths, "version")
		assert.Contains(t, errorPaths, "server.basePath")
		assert.Contains(t, errorPaths, "server.csrfSecret")
		assert.Contains(t, errorPaths, "picker.cookie_expires")
		assert.Contains(t, errorPaths, "picker.show_providers")
		assert.Contains(t, errorPaths, "providers.file")

		warningPaths := paths(result.Warnings)
		assert.Contains(t, warningPaths, "server.verifyURL")
		assert.Contains(t, warningPaths, "server.colour")
		assert.Contains(t, warningPaths, "picker.image_title")
	})

	t.Run("missing server", func(t *testing.T) {
		result := ValidateBytes([]byte(`{"version": "v0.0.1-DEV_EDITION"}`))
		assert.Equal(t, []string{"server"}, paths(result.Errors))
	})

	t.Run("invalid json", func(t *testing.T) {
		result := ValidateBytes([]byte(`not json`))
		require.Len(t, result.Errors, 1)
		assert.True(t, strings.HasPrefix(result.Errors[0].Message, "invalid JSON"))
	})
}

func TestWriteExample_RefusesOverwrite(t *testing.T) {
	path := writeConfig(t, `{}`)
	err := WriteExample(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestWriteExample_Loads(t *testing.T) {
	t.Setenv("CSRF_SECRET", testSecret)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, WriteExample(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "en", cfg.Picker.Locale)
}

func paths(errs []ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Path)
	}
	return out
}
