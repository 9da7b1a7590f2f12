package cookie

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadValue(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		key       string
		wantValue string
		wantOK    bool
	}{
		{"empty header", "", "openid_provider", "", false},
		{"single cookie", "openid_provider=google", "openid_provider", "google", true},
		{"leading spaces trimmed", "a=1;   openid_provider=yahoo", "openid_provider", "yahoo", true},
		{"first match wins", "openid_provider=aol; openid_provider=google", "openid_provider", "aol", true},
		{"prefix must include equals", "openid_provider_old=x", "openid_provider", "", false},
		{"empty value", "openid_provider=", "openid_provider", "", true},
		{"value keeps equals", "k=a=b", "k", "a=b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := ReadValue(tt.header, tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantValue, v)
		})
	}
}

func TestJar_RoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jar := NewJarAt(func() time.Time { return now })

	_, ok := jar.Get("openid_provider")
	assert.False(t, ok, "nothing stored before the first write")

	jar.Set(Cookie{Name: "openid_provider", Value: "google", Path: "/", Expires: now.Add(time.Hour)})
	v, ok := jar.Get("openid_provider")
	require.True(t, ok)
	assert.Equal(t, "google", v)

	jar.Set(Cookie{Name: "openid_provider", Value: "yahoo", Path: "/", Expires: now.Add(time.Hour)})
	v, _ = jar.Get("openid_provider")
	assert.Equal(t, "yahoo", v)
	assert.Equal(t, "openid_provider=yahoo", jar.String())
}

func TestJar_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jar := NewJarAt(func() time.Time { return now })

	jar.Set(Cookie{Name: "a", Value: "1", Path: "/", Expires: now.Add(time.Minute)})
	jar.Set(Cookie{Name: "b", Value: "2", Path: "/", Expires: now.Add(-time.Minute)})

	_, ok := jar.Get("b")
	assert.False(t, ok, "already-expired cookie is not stored")

	now = now.Add(2 * time.Minute)
	_, ok = jar.Get("a")
	assert.False(t, ok, "cookie disappears once expired")
}

func TestHTTPStore(t *testing.T) {
	t.Setenv("OPENID_SELECTOR_ENV", "dev")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Add("Cookie", "other=1; openid_provider=aol")
	rec := httptest.NewRecorder()

	store := NewHTTPStore(rec, req)
	v, ok := store.Get("openid_provider")
	require.True(t, ok)
	assert.Equal(t, "aol", v)

	expires := time.Now().Add(180 * 24 * time.Hour)
	store.Set(Cookie{Name: "openid_provider", Value: "google", Path: "/auth", Expires: expires})

	v, _ = store.Get("openid_provider")
	assert.Equal(t, "google", v, "reads see values written in the same response")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "openid_provider", cookies[0].Name)
	assert.Equal(t, "google", cookies[0].Value)
	assert.Equal(t, "/auth", cookies[0].Path)
	assert.False(t, cookies[0].Secure)
	assert.Greater(t, cookies[0].MaxAge, 0)
}

func TestCSRFCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetCSRF(rec, "token-value", "/")

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	v, err := GetCSRF(req)
	require.NoError(t, err)
	assert.Equal(t, "token-value", v)

	rec = httptest.NewRecorder()
	Clear(rec, CSRFCookie, "/")
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
