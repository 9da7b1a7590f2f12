package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasePathRouting(t *testing.T) {
	addr := freeAddr(t)
	startSelector(t, writeTestConfig(t, buildTestConfig(addr, "/login/", nil, nil)))
	waitForSelector(t, addr)

	t.Run("health at root", func(t *testing.T) {
		resp, err := http.Get(pageURL(addr, "/health"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("health not under base path", func(t *testing.T) {
		resp, err := http.Get(pageURL(addr, "/login/health"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("picker at base path", func(t *testing.T) {
		status, body, token := getPage(t, newBrowser(t), pageURL(addr, "/login/"))
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, body, `href="/login/select?provider=google"`)
		assert.NotEmpty(t, token)
	})

	t.Run("picker not at root", func(t *testing.T) {
		resp, err := http.Get(pageURL(addr, "/select?provider=google"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("metrics at root", func(t *testing.T) {
		resp, err := http.Get(pageURL(addr, "/metrics"))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
