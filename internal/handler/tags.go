package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avoronin/linkcut/internal/models"
	"github.com/avoronin/linkcut/internal/service"
)

func (h *Handler) CreateTagHandler(rw http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerID(rw, r)
	if !ok {
		return
	}

	var req models.CreateTagRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		http.Error(rw, "Invalid JSON", http.StatusBadRequest)
		return
	}

	tag, err := h.tags.Create(r.Context(), ownerID, req.Name)
	if err != nil {
		h.writeError(rw, err)
		return
	}

	h.logger.Info("tag created",
		zap.String("name", tag.Name),
		zap.String("ownerID", ownerID))

	h.writeJSON(rw, http.StatusCreated, tag)
}

func (h *Handler) ListTagsHandler(rw http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerID(rw, r)
	if !ok {
		return
	}

	tags, err := h.tags.List(r.Context(), ownerID)
	if err != nil {
		h.writeError(rw, err)
		return
	}

	h.writeJSON(rw, http.StatusOK, tags)
}

func (h *Handler) RenameTagHandler(rw http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerID(rw, r)
	if !ok {
		return
	}

	tagID, err := uuid.Parse(chi.URLParam(r, "tagID"))
	if err != nil {
		h.writeError(rw, service.ErrTagNotFound)
		return
	}

	var req models.RenameTagRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		http.Error(rw, "Invalid JSON", http.StatusBadRequest)
		return
	}

	tag, err := h.tags.Rename(r.Context(), ownerID, tagID, req.Name)
	if err != nil {
		h.writeError(rw, err)
		return
	}

	h.writeJSON(rw, http.StatusOK, tag)
}

func (h *Handler) DeleteTagHandler(rw http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerID(rw, r)
	if !ok {
		return
	}

	tagID, err := uuid.Parse(chi.URLParam(r, "tagID"))
	if err != nil {
		h.writeError(rw, service.ErrTagNotFound)
		return
	}

	if err := h.tags.Delete(r.Context(), ownerID, tagID); err != nil {
		h.writeError(rw, err)
		return
	}

	rw.WriteHeader(http.StatusNoContent)
}
