package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avoronin/linkcut/internal/service"
)

func (h *Handler) DeleteLinkHandler(rw http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerID(rw, r)
	if !ok {
		return
	}

	linkID, err := uuid.Parse(chi.URLParam(r, "linkID"))
	if err != nil {
		h.writeError(rw, service.ErrLinkNotFound)
		return
	}

	link, err := h.links.Delete(r.Context(), ownerID, linkID)
	if err != nil {
		h.writeError(rw, err)
		return
	}

	h.logger.Info("link deleted",
		zap.String("linkID", linkID.String()),
		zap.String("shortcode", link.Shortcode),
		zap.String("ownerID", ownerID))

	h.writeJSON(rw, http.StatusOK, h.newLinkResponse(link))
}
