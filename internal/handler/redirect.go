package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/avoronin/linkcut/internal/service"
)

// RedirectHandler serves the public GET /{shortcode} path. Nonexistent,
// deactivated, expired and deleted codes all produce the same 404 so the
// response never confirms whether a code exists.
func (h *Handler) RedirectHandler(rw http.ResponseWriter, r *http.Request) {
	shortcode := chi.URLParam(r, "shortcode")
	if shortcode == "" {
		http.Error(rw, "Not Found", http.StatusNotFound)
		return
	}

	destination, err := h.links.Resolve(r.Context(), shortcode, r.UserAgent(), r.Referer())
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			http.Error(rw, "Not Found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to resolve shortcode",
			zap.String("shortcode", shortcode),
			zap.Error(err))
		http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rw.Header().Set("Location", destination)
	rw.WriteHeader(http.StatusFound)
}
