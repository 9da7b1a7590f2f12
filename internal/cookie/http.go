package cookie

import (
	"net/http"
	"strings"
	"time"

	"github.com/dgellow/openid-selector/internal/envutil"
	"github.com/dgellow/openid-selector/internal/log"
)

// HTTPStore adapts a request/response pair to Store. Reads see the
// request's Cookie header plus anything written earlier in the same
// response.
type HTTPStore struct {
	w       http.ResponseWriter
	header  string
	written *Jar
	now     func() time.Time
}

// NewHTTPStore wraps the request cookies and the response writer
func NewHTTPStore(w http.ResponseWriter, r *http.Request) *HTTPStore {
	return &HTTPStore{
		w:       w,
		header:  strings.Join(r.Header.Values("Cookie"), "; "),
		written: NewJar(),
		now:     time.Now,
	}
}

// Get prefers values set during this response
func (s *HTTPStore) Get(name string) (string, bool) {
	if v, ok := s.written.Get(name); ok {
		return v, true
	}
	return ReadValue(s.header, name)
}

// Set emits a Set-Cookie header
func (s *HTTPStore) Set(c Cookie) {
	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Secure:   !envutil.IsDev(),
		SameSite: http.SameSiteLaxMode,
	}
	if !c.Expires.IsZero() {
		hc.Expires = c.Expires.UTC()
		hc.MaxAge = int(c.Expires.Sub(s.now()).Seconds())
		if hc.MaxAge <= 0 {
			hc.MaxAge = -1
		}
	}
	http.SetCookie(s.w, hc)
	s.written.Set(c)

	log.LogTraceWithFields("cookie", "Cookie set", map[string]any{
		"name":    c.Name,
		"path":    c.Path,
		"expires": c.Expires.UTC().Format(time.RFC1123),
		"secure":  hc.Secure,
	})
}

var _ Store = (*HTTPStore)(nil)
