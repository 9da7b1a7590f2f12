package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"slices"
	"sort"
	"strings"
)

// ValidationResult holds validation errors and warnings
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// ValidationError represents a validation issue
type ValidationError struct {
	Path    string
	Message string
}

// IsValid returns true if there are no errors
func (v *ValidationResult) IsValid() bool {
	return len(v.Errors) == 0
}

var (
	topLevelKeys = []string{"version", "server", "picker", "providers"}
	serverKeys   = []string{"addr", "baseURL", "basePath", "name", "verifyURL", "hiddenFieldId", "staticDir", "csrfSecret"}
	pickerKeys   = []string{
		"demo", "demo_text", "cookie_expires", "cookie_name", "cookie_path", "img_path",
		"locale", "sprite", "signin_text", "all_small", "no_sprite", "image_title", "show_providers",
	}
	providersKeys = []string{"file", "watch"}

	bashStyleRegex = regexp.MustCompile(`\$\{?[A-Z_][A-Z0-9_]*\}?`)
)

// ValidateFile validates a config file structure without requiring env vars
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return ValidateBytes(data), nil
}

// ValidateBytes validates config JSON already read into memory
func ValidateBytes(data []byte) *ValidationResult {
	result := &ValidationResult{}

	var rawConfig map[string]any
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
		})
		return result
	}

	checkBashStyleSyntax(rawConfig, "", result)
	checkUnknownKeys(rawConfig, "", topLevelKeys, result)

	version, ok := rawConfig["version"].(string)
	if !ok {
		result.Errors = append(result.Errors, ValidationError{
			Path:    "version",
			Message: fmt.Sprintf("version field is required. Hint: Add \"version\": %q", VersionPrefix),
		})
	} else if !strings.HasPrefix(version, VersionPrefix) {
		result.Errors = append(result.Errors, ValidationError{
			Path:    "version",
			Message: fmt.Sprintf("unsupported version '%s' - use '%s' or '%s-<variant>'", version, VersionPrefix, VersionPrefix),
		})
	}

	server, ok := rawConfig["server"].(map[string]any)
	if !ok {
		result.Errors = append(result.Errors, ValidationError{
			Path:    "server",
			Message: "server section is required",
		})
	} else {
		validateServerStructure(server, result)
	}

	if picker, ok := rawConfig["picker"]; ok {
		if m, isMap := picker.(map[string]any); isMap {
			validatePickerStructure(m, result)
		} else {
			result.Errors = append(result.Errors, ValidationError{Path: "picker", Message: "picker must be an object"})
		}
	}

	if providers, ok := rawConfig["providers"]; ok {
		if m, isMap := providers.(map[string]any); isMap {
			validateProvidersStructure(m, result)
		} else {
			result.Errors = append(result.Errors, ValidationError{Path: "providers", Message: "providers must be an object"})
		}
	}

	return result
}

func validateServerStructure(server map[string]any, result *ValidationResult) {
	checkUnknownKeys(server, "server", serverKeys, result)

	for _, field := range []string{"addr", "verifyURL"} {
		if _, ok := server[field]; !ok {
			result.Errors = append(result.Errors, ValidationError{
				Path:    "server." + field,
				Message: field + " is required",
			})
		}
	}

	secret, ok := server["csrfSecret"]
	if !ok {
		result.Errors = append(result.Errors, ValidationError{
			Path:    "server.csrfSecret",
			Message: "csrfSecret is required. Hint: {\"$env\": \"CSRF_SECRET\"}",
		})
	} else if !isEnvRef(secret) {
		result.Errors = append(result.Errors, ValidationError{
			Path:    "server.csrfSecret",
			Message: "csrfSecret must use {\"$env\": \"VAR_NAME\"} so the secret stays out of the file",
		})
	}

	if basePath, ok := server["basePath"].(string); ok && !strings.HasPrefix(basePath, "/") {
		result.Errors = append(result.Errors, ValidationError{
			Path:    "server.basePath",
			Message: "basePath must start with '/'",
		})
	}

	if dir, ok := server["staticDir"].(string); ok && dir != "" {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			result.Warnings = append(result.Warnings, ValidationError{
				Path:    "server.staticDir",
				Message: fmt.Sprintf("static directory '%s' does not exist", dir),
			})
		}
	}
}

func validatePickerStructure(picker map[string]any, result *ValidationResult) {
	checkUnknownKeys(picker, "picker", pickerKeys, result)

	if v, ok := picker["cookie_expires"]; ok {
		n, isNum := v.(float64)
		if !isNum || n < 0 {
			result.Errors = append(result.Errors, ValidationError{
				Path:    "picker.cookie_expires",
				Message: "cookie_expires must be a non-negative number of days",
			})
		} else if n == 0 {
			result.Warnings = append(result.Warnings, ValidationError{
				Path:    "picker.cookie_expires",
				Message: "cookie_expires of 0 expires the remembered provider immediately",
			})
		}
	}

	if v, ok := picker["image_title"].(string); ok && !strings.Contains(v, "{provider}") {
		result.Warnings = append(result.Warnings, ValidationError{
			Path:    "picker.image_title",
			Message: "image_title has no {provider} placeholder; every icon gets the same title",
		})
	}

	if v, ok := picker["show_providers"]; ok {
		if _, isList := v.([]any); !isList {
			result.Errors = append(result.Errors, ValidationError{
				Path:    "picker.show_providers",
				Message: "show_providers must be a list of provider ids",
			})
		}
	}
}

func validateProvidersStructure(providers map[string]any, result *ValidationResult) {
	checkUnknownKeys(providers, "providers", providersKeys, result)

	file, _ := providers["file"].(string)
	if file != "" {
		if _, err := os.Stat(file); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Path:    "providers.file",
				Message: fmt.Sprintf("provider file '%s' is not readable: %v", file, err),
			})
		}
	}
	if watch, _ := providers["watch"].(bool); watch && file == "" {
		result.Warnings = append(result.Warnings, ValidationError{
			Path:    "providers.watch",
			Message: "watch has no effect without providers.file",
		})
	}
}

func isEnvRef(value any) bool {
	m, ok := value.(map[string]any)
	if !ok {
		return false
	}
	name, ok := m["$env"].(string)
	return ok && name != ""
}

func checkUnknownKeys(obj map[string]any, path string, known []string, result *ValidationResult) {
	var unknown []string
	for key := range obj {
		if !slices.Contains(known, key) {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		p := key
		if path != "" {
			p = path + "." + key
		}
		result.Warnings = append(result.Warnings, ValidationError{
			Path:    p,
			Message: fmt.Sprintf("unknown field '%s' is ignored", key),
		})
	}
}

func checkBashStyleSyntax(value any, path string, result *ValidationResult) {
	switch v := value.(type) {
	case string:
		for _, match := range bashStyleRegex.FindAllString(v, -1) {
			varName := strings.Trim(match, "${}")
			result.Warnings = append(result.Warnings, ValidationError{
				Path:    path,
				Message: fmt.Sprintf("found bash-style syntax '%s' - use {\"$env\": \"%s\"} instead", match, varName),
			})
		}
	case map[string]any:
		if _, hasEnv := v["$env"]; hasEnv {
			return
		}
		for key, val := range v {
			newPath := key
			if path != "" {
				newPath = path + "." + key
			}
			checkBashStyleSyntax(val, newPath, result)
		}
	case []any:
		for i, item := range v {
			checkBashStyleSyntax(item, fmt.Sprintf("%s[%d]", path, i), result)
		}
	}
}
