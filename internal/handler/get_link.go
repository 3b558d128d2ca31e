package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avoronin/linkcut/internal/service"
)

func (h *Handler) GetLinkHandler(rw http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.ownerID(rw, r)
	if !ok {
		return
	}

	linkID, err := uuid.Parse(chi.URLParam(r, "linkID"))
	if err != nil {
		// A malformed id cannot name an existing link.
		h.writeError(rw, service.ErrLinkNotFound)
		return
	}

	link, err := h.links.Get(r.Context(), ownerID, linkID)
	if err != nil {
		h.writeError(rw, err)
		return
	}

	h.writeJSON(rw, http.StatusOK, h.newLinkResponse(link))
}
