package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListLinksHandler(t *testing.T) {
	router := newTestRouter(t)

	first := createTestLink(t, router, "owner-1", map[string]any{"url": "https://example.com/1"})
	second := createTestLink(t, router, "owner-1", map[string]any{"url": "https://example.com/2"})
	third := createTestLink(t, router, "owner-1", map[string]any{"url": "https://example.com/3"})

	// Deactivate the second link and give another owner a link of their own.
	w := doJSON(t, router, http.MethodPatch, "/api/links/"+second.ID.String(), "owner-1",
		map[string]any{"isActive": false})
	require.Equal(t, http.StatusOK, w.Code)
	createTestLink(t, router, "owner-2", map[string]any{"url": "https://example.com/other"})

	t.Run("default listing is owner-scoped, newest first", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/links", "owner-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeJSON[linkListResponse](t, w)
		require.Len(t, resp.Data, 3)
		assert.Equal(t, third.ID, resp.Data[0].ID)
		assert.Equal(t, second.ID, resp.Data[1].ID)
		assert.Equal(t, first.ID, resp.Data[2].ID)
		assert.Equal(t, int64(3), resp.Pagination.Total)
	})

	t.Run("status filter", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/links?status=inactive", "owner-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeJSON[linkListResponse](t, w)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, second.ID, resp.Data[0].ID)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/links?status=bogus", "owner-1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("pagination shape", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/links?page=2&limit=2", "owner-1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeJSON[linkListResponse](t, w)
		assert.Len(t, resp.Data, 1)
		assert.Equal(t, 2, resp.Pagination.Page)
		assert.Equal(t, 2, resp.Pagination.Limit)
		assert.Equal(t, int64(3), resp.Pagination.Total)
		assert.Equal(t, int64(2), resp.Pagination.TotalPages)
	})

	t.Run("invalid tag id rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/links?tags=not-a-uuid", "owner-1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListLinksFilterByTags(t *testing.T) {
	router := newTestRouter(t)

	first := createTestLink(t, router, "owner-1", map[string]any{"url": "https://example.com/1"})
	second := createTestLink(t, router, "owner-1", map[string]any{"url": "https://example.com/2"})
	createTestLink(t, router, "owner-1", map[string]any{"url": "https://example.com/3"})

	shared := createTestTag(t, router, "owner-1", "shared")
	rare := createTestTag(t, router, "owner-1", "rare")

	w := doJSON(t, router, http.MethodPost, "/api/links/"+first.ID.String()+"/tags", "owner-1",
		map[string]any{"tagIds": []string{shared.ID, rare.ID}})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodPost, "/api/links/"+second.ID.String()+"/tags", "owner-1",
		map[string]any{"tagIds": []string{shared.ID}})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/links?tags="+shared.ID, "owner-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeJSON[linkListResponse](t, w)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, second.ID, resp.Data[0].ID)
	assert.Equal(t, first.ID, resp.Data[1].ID)
}
