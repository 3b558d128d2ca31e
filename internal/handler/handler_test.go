package handler

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avoronin/linkcut/internal/middleware"
	"github.com/avoronin/linkcut/internal/repository"
	"github.com/avoronin/linkcut/internal/service"
)

const (
	testSecret  = "test-secret-key"
	testBaseURL = "http://localhost:8080"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	logger := zap.NewNop()
	repo := repository.NewMemoryRepository()

	links := service.NewLinkService(repo, nil, nil, time.Hour, logger)
	tags := service.NewTagService(repo, repo, logger)
	auth := middleware.NewAuthMiddleware(testSecret, logger)

	h := NewHandler(links, tags, auth, repo, testBaseURL, logger)
	return h.SetupRouter()
}

func createTestCookie(ownerID string) *http.Cookie {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(ownerID))
	signature := mac.Sum(nil)

	return &http.Cookie{
		Name:  "owner_id",
		Value: ownerID + "." + hex.EncodeToString(signature),
	}
}

// doJSON performs a JSON request against the router as the given owner and
// returns the recorded response.
func doJSON(t *testing.T, router *chi.Mux, method, path, ownerID string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if ownerID != "" {
		req.AddCookie(createTestCookie(ownerID))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}

func createTestLink(t *testing.T, router *chi.Mux, ownerID string, payload map[string]any) linkResponse {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/links", ownerID, payload)
	require.Equal(t, http.StatusCreated, w.Code, "failed to create link: %s", w.Body.String())
	return decodeJSON[linkResponse](t, w)
}

func createTestTag(t *testing.T, router *chi.Mux, ownerID, name string) tagPayload {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/tags", ownerID, map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, "failed to create tag: %s", w.Body.String())
	return decodeJSON[tagPayload](t, w)
}

type tagPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
