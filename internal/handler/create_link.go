package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/avoronin/linkcut/internal/models"
)

func (h *Handler) CreateLinkHandler(rw http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerID(rw, r)
	if !ok {
		return
	}

	var req models.CreateLinkRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		http.Error(rw, "Invalid JSON", http.StatusBadRequest)
		return
	}

	link, err := h.links.Create(r.Context(), ownerID, req)
	if err != nil {
		h.writeError(rw, err)
		return
	}

	h.logger.Info("link created",
		zap.String("shortcode", link.Shortcode),
		zap.String("ownerID", ownerID))

	h.writeJSON(rw, http.StatusCreated, h.newLinkResponse(link))
}
