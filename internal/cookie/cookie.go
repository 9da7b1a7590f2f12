package cookie

import (
	"net/http"
	"strings"
	"time"

	"github.com/dgellow/openid-selector/internal/envutil"
	"github.com/dgellow/openid-selector/internal/log"
)

// CSRFCookie carries the double-submit CSRF token for the picker form
const CSRFCookie = "openid_csrf"

// Cookie is a single name/value pair with its scope and lifetime
type Cookie struct {
	Name    string
	Value   string
	Path    string
	Expires time.Time
}

// Store is the small key-value persistence capability the picker writes
// its last selection to
type Store interface {
	// Get returns the value of the named cookie, if present.
	Get(name string) (string, bool)
	// Set creates or replaces a cookie.
	Set(c Cookie)
}

// ReadValue scans a raw cookie string ("a=1; b=2") and returns the value
// of the first segment starting with name followed by "="
func ReadValue(header, name string) (string, bool) {
	prefix := name + "="
	for _, segment := range strings.Split(header, ";") {
		segment = strings.TrimLeft(segment, " ")
		if strings.HasPrefix(segment, prefix) {
			return segment[len(prefix):], true
		}
	}
	return "", false
}

// SetCSRF sets a CSRF token cookie
func SetCSRF(w http.ResponseWriter, value, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookie,
		Value:    value,
		Path:     path,
		HttpOnly: true,
		Secure:   !envutil.IsDev(),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int((24 * time.Hour).Seconds()),
	})
}

// GetCSRF retrieves the CSRF cookie value
func GetCSRF(r *http.Request) (string, error) {
	return Get(r, CSRFCookie)
}

// Clear removes a cookie by setting MaxAge to -1
func Clear(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:   name,
		Value:  "",
		Path:   path,
		MaxAge: -1,
	})
	log.LogTraceWithFields("cookie", "Cookie cleared", map[string]any{
		"name": name,
	})
}

// Get retrieves a cookie value from the request
func Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", err
	}
	return c.Value, nil
}
