package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avoronin/linkcut/internal/models"
	"github.com/avoronin/linkcut/internal/service"
)

func (h *Handler) AttachTagsHandler(rw http.ResponseWriter, r *http.Request) {
	h.mutateLinkTags(rw, r, h.tags.Attach)
}

func (h *Handler) DetachTagsHandler(rw http.ResponseWriter, r *http.Request) {
	h.mutateLinkTags(rw, r, h.tags.Detach)
}

func (h *Handler) mutateLinkTags(
	rw http.ResponseWriter,
	r *http.Request,
	mutate func(ctx context.Context, ownerID string, linkID uuid.UUID, tagIDs []uuid.UUID) (models.Link, error),
) {
	ownerID, ok := h.ownerID(rw, r)
	if !ok {
		return
	}

	linkID, err := uuid.Parse(chi.URLParam(r, "linkID"))
	if err != nil {
		h.writeError(rw, service.ErrLinkNotFound)
		return
	}

	var req models.TagIDsRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		http.Error(rw, "Invalid JSON", http.StatusBadRequest)
		return
	}

	link, err := mutate(r.Context(), ownerID, linkID, req.TagIDs)
	if err != nil {
		h.writeError(rw, err)
		return
	}

	h.writeJSON(rw, http.StatusOK, h.newLinkResponse(link))
}
