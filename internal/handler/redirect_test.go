package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirectHandler(t *testing.T) {
	router := newTestRouter(t)

	link := createTestLink(t, router, "owner-1", map[string]any{
		"url": "https://example.com/a",
	})

	get := func(code string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/"+code, nil))
		return w
	}

	t.Run("resolvable link redirects", func(t *testing.T) {
		w := get(link.Shortcode)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://example.com/a", w.Header().Get("Location"))
	})

	t.Run("unknown code is not found", func(t *testing.T) {
		w := get("nosuchcode")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("deactivated link is indistinguishable from missing", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/api/links/"+link.ID.String(), "owner-1",
			map[string]any{"isActive": false})
		require.Equal(t, http.StatusOK, w.Code)

		resp := get(link.Shortcode)
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, get("nosuchcode").Body.String(), resp.Body.String(),
			"deactivated and nonexistent codes must produce identical responses")
	})

	t.Run("reactivated link resolves again", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, "/api/links/"+link.ID.String(), "owner-1",
			map[string]any{"isActive": true})
		require.Equal(t, http.StatusOK, w.Code)

		resp := get(link.Shortcode)
		assert.Equal(t, http.StatusFound, resp.Code)
		assert.Equal(t, "https://example.com/a", resp.Header().Get("Location"))
	})

	t.Run("deleted link is not found", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, "/api/links/"+link.ID.String(), "owner-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		assert.Equal(t, http.StatusNotFound, get(link.Shortcode).Code)
	})
}
