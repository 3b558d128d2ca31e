package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagCRUDHandlers(t *testing.T) {
	router := newTestRouter(t)

	t.Run("create and list", func(t *testing.T) {
		createTestTag(t, router, "owner-1", "news")
		createTestTag(t, router, "owner-1", "work")
		createTestTag(t, router, "owner-2", "news")

		w := doJSON(t, router, http.MethodGet, "/api/tags", "owner-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		tags := decodeJSON[[]tagPayload](t, w)
		require.Len(t, tags, 2)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/tags", "owner-1", map[string]any{"name": "news"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "TagNameTaken", decodeJSON[errorPayload](t, w).Code)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/tags", "owner-1", map[string]any{"name": "   "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rename", func(t *testing.T) {
		tag := createTestTag(t, router, "owner-1", "draft")

		w := doJSON(t, router, http.MethodPatch, "/api/tags/"+tag.ID, "owner-1",
			map[string]any{"name": "archive"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "archive", decodeJSON[tagPayload](t, w).Name)
	})

	t.Run("rename foreign tag is not found", func(t *testing.T) {
		tag := createTestTag(t, router, "owner-2", "private")

		w := doJSON(t, router, http.MethodPatch, "/api/tags/"+tag.ID, "owner-1",
			map[string]any{"name": "stolen"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		tag := createTestTag(t, router, "owner-1", "temp")

		w := doJSON(t, router, http.MethodDelete, "/api/tags/"+tag.ID, "owner-1", nil)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = doJSON(t, router, http.MethodDelete, "/api/tags/"+tag.ID, "owner-1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed tag id is not found", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, "/api/tags/not-a-uuid", "owner-1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown tag id is not found", func(t *testing.T) {
		w := doJSON(t, router, http.MethodDelete, "/api/tags/"+uuid.NewString(), "owner-1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
