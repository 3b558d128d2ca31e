package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/avoronin/linkcut/internal/middleware"
	"github.com/avoronin/linkcut/internal/models"
	"github.com/avoronin/linkcut/internal/service"
)

// Pinger reports storage connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	links   *service.LinkService
	tags    *service.TagService
	auth    *middleware.AuthMiddleware
	pinger  Pinger
	baseURL string
	logger  *zap.Logger
}

func NewHandler(links *service.LinkService, tags *service.TagService, auth *middleware.AuthMiddleware, pinger Pinger, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		links:   links,
		tags:    tags,
		auth:    auth,
		pinger:  pinger,
		baseURL: baseURL,
		logger:  logger,
	}
}

// linkResponse is a link plus the full short URL built from the base URL.
type linkResponse struct {
	models.Link
	ShortURL string `json:"shortUrl"`
}

func (h *Handler) newLinkResponse(link models.Link) linkResponse {
	shortURL, _ := url.JoinPath(h.baseURL, link.Shortcode)
	return linkResponse{Link: link, ShortURL: shortURL}
}

func (h *Handler) writeJSON(rw http.ResponseWriter, statusCode int, payload any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(statusCode)

	if err := json.NewEncoder(rw).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError maps domain errors to wire error codes. Infrastructure errors
// surface as InternalError with no detail leaked to the caller.
func (h *Handler) writeError(rw http.ResponseWriter, err error) {
	var statusCode int
	var code string

	switch {
	case errors.Is(err, service.ErrLinkNotFound):
		statusCode, code = http.StatusNotFound, "LinkNotFound"
	case errors.Is(err, service.ErrTagNotFound):
		statusCode, code = http.StatusNotFound, "TagNotFound"
	case errors.Is(err, service.ErrShortcodeTaken):
		statusCode, code = http.StatusConflict, "ShortcodeTaken"
	case errors.Is(err, service.ErrTagNameTaken):
		statusCode, code = http.StatusConflict, "TagNameTaken"
	case errors.Is(err, service.ErrInvalidURL):
		statusCode, code = http.StatusBadRequest, "InvalidURL"
	case errors.Is(err, service.ErrNothingToUpdate),
		errors.Is(err, service.ErrExpiryInPast),
		errors.Is(err, service.ErrValidation):
		statusCode, code = http.StatusBadRequest, "ValidationFailed"
	case errors.Is(err, service.ErrCodeGenerationExhausted):
		statusCode, code = http.StatusInternalServerError, "CodeGenerationExhausted"
	default:
		h.logger.Error("internal error", zap.Error(err))
		h.writeJSON(rw, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "InternalError",
			Message: "internal server error",
		})
		return
	}

	h.writeJSON(rw, statusCode, models.ErrorResponse{Code: code, Message: err.Error()})
}

// ownerID extracts the verified owner identity set by the auth middleware.
// Routes calling this are mounted behind that middleware, so an absent
// owner means broken wiring, not an unauthenticated user.
func (h *Handler) ownerID(rw http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID, ok := middleware.GetOwnerIDFromContext(r.Context())
	if !ok || ownerID == "" {
		http.Error(rw, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return "", false
	}
	return ownerID, true
}
