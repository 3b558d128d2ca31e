package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateLinkHandler(t *testing.T) {
	router := newTestRouter(t)

	link := createTestLink(t, router, "owner-1", map[string]any{
		"url":       "https://example.com/a",
		"shortcode": "original1",
	})
	path := "/api/links/" + link.ID.String()

	t.Run("empty update rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, path, "owner-1", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "ValidationFailed", decodeJSON[errorPayload](t, w).Code)
	})

	t.Run("past expiry rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, path, "owner-1",
			map[string]any{"expiresAt": "2001-01-01T00:00:00Z"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("foreign owner sees not found", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, path, "owner-2",
			map[string]any{"isActive": false})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "LinkNotFound", decodeJSON[errorPayload](t, w).Code)
	})

	t.Run("rename switches resolution to the new code", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPatch, path, "owner-1",
			map[string]any{"shortcode": "renamed-1"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		updated := decodeJSON[linkResponse](t, w)
		assert.Equal(t, "renamed-1", updated.Shortcode)

		oldResp := httptest.NewRecorder()
		router.ServeHTTP(oldResp, httptest.NewRequest(http.MethodGet, "/original1", nil))
		assert.Equal(t, http.StatusNotFound, oldResp.Code)

		newResp := httptest.NewRecorder()
		router.ServeHTTP(newResp, httptest.NewRequest(http.MethodGet, "/renamed-1", nil))
		assert.Equal(t, http.StatusFound, newResp.Code)
		assert.Equal(t, "https://example.com/a", newResp.Header().Get("Location"))
	})

	t.Run("rename to taken code conflicts", func(t *testing.T) {
		createTestLink(t, router, "owner-1", map[string]any{
			"url":       "https://example.com/b",
			"shortcode": "occupied1",
		})

		w := doJSON(t, router, http.MethodPatch, path, "owner-1",
			map[string]any{"shortcode": "occupied1"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestDeleteLinkHandler(t *testing.T) {
	router := newTestRouter(t)

	link := createTestLink(t, router, "owner-1", map[string]any{
		"url": "https://example.com/a",
	})
	path := "/api/links/" + link.ID.String()

	t.Run("foreign owner sees not found", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, path, "owner-2", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete returns the tombstoned record", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, path, "owner-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		deleted := decodeJSON[linkResponse](t, w)
		assert.NotNil(t, deleted.DeletedAt)
	})

	t.Run("second delete is not found", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, path, "owner-1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetLinkHandler(t *testing.T) {
	router := newTestRouter(t)

	link := createTestLink(t, router, "owner-1", map[string]any{
		"url": "https://example.com/a",
	})

	t.Run("owner fetches their link", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/links/"+link.ID.String(), "owner-1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, link.ID, decodeJSON[linkResponse](t, w).ID)
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/links/not-a-uuid", "owner-1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("foreign owner sees not found", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/links/"+link.ID.String(), "owner-2", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
