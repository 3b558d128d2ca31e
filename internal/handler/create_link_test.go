package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLinkHandler(t *testing.T) {
	type want struct {
		statusCode int
		errorCode  string
	}

	tests := []struct {
		name    string
		payload map[string]any
		want    want
	}{
		{
			name:    "generated code",
			payload: map[string]any{"url": "https://example.com/a"},
			want:    want{statusCode: http.StatusCreated},
		},
		{
			name:    "custom code",
			payload: map[string]any{"url": "https://example.com/a", "shortcode": "custom-1"},
			want:    want{statusCode: http.StatusCreated},
		},
		{
			name:    "invalid url scheme",
			payload: map[string]any{"url": "ftp://example.com/a"},
			want:    want{statusCode: http.StatusBadRequest, errorCode: "InvalidURL"},
		},
		{
			name:    "empty url",
			payload: map[string]any{"url": ""},
			want:    want{statusCode: http.StatusBadRequest, errorCode: "InvalidURL"},
		},
		{
			name:    "malformed custom code",
			payload: map[string]any{"url": "https://example.com/a", "shortcode": "bad code!"},
			want:    want{statusCode: http.StatusBadRequest, errorCode: "ValidationFailed"},
		},
		{
			name:    "expiry in the past",
			payload: map[string]any{"url": "https://example.com/a", "expiresAt": "2001-01-01T00:00:00Z"},
			want:    want{statusCode: http.StatusBadRequest, errorCode: "ValidationFailed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t)

			w := doJSON(t, router, http.MethodPost, "/api/links", "owner-1", tt.payload)
			assert.Equal(t, tt.want.statusCode, w.Code, w.Body.String())

			if tt.want.errorCode != "" {
				assert.Equal(t, tt.want.errorCode, decodeJSON[errorPayload](t, w).Code)
			}
		})
	}
}

func TestCreateLinkShortcodeTaken(t *testing.T) {
	router := newTestRouter(t)

	createTestLink(t, router, "owner-1", map[string]any{
		"url":       "https://example.com/a",
		"shortcode": "taken-one",
	})

	w := doJSON(t, router, http.MethodPost, "/api/links", "owner-2", map[string]any{
		"url":       "https://example.com/b",
		"shortcode": "taken-one",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ShortcodeTaken", decodeJSON[errorPayload](t, w).Code)
}

func TestCreateLinkReturnsShortURL(t *testing.T) {
	router := newTestRouter(t)

	link := createTestLink(t, router, "owner-1", map[string]any{
		"url":       "https://example.com/a",
		"shortcode": "named",
	})

	assert.Equal(t, testBaseURL+"/named", link.ShortURL)
	assert.True(t, link.IsActive)
	assert.Empty(t, link.TagIDs)
}
