package envutil

import (
	"os"
	"strings"
)

// EnvVar selects the runtime environment
const EnvVar = "OPENID_SELECTOR_ENV"

// IsDev checks if we're running in development mode, where cookies are
// issued without the Secure flag so the picker works over plain http
func IsDev() bool {
	env := strings.ToLower(os.Getenv(EnvVar))
	return env == "development" || env == "dev"
}
