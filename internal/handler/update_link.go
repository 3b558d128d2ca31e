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

func (h *Handler) UpdateLinkHandler(rw http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerID(rw, r)
	if !ok {
		return
	}

	linkID, err := uuid.Parse(chi.URLParam(r, "linkID"))
	if err != nil {
		h.writeError(rw, service.ErrLinkNotFound)
		return
	}

	var req models.UpdateLinkRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		http.Error(rw, "Invalid JSON", http.StatusBadRequest)
		return
	}

	link, err := h.links.Update(r.Context(), ownerID, linkID, req)
	if err != nil {
		h.writeError(rw, err)
		return
	}

	h.logger.Info("link updated",
		zap.String("linkID", linkID.String()),
		zap.String("ownerID", ownerID))

	h.writeJSON(rw, http.StatusOK, h.newLinkResponse(link))
}
