package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avoronin/linkcut/internal/middleware"
)

func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(h.logger))

	r.Get("/ping", h.PingHandler)
	r.Get("/{shortcode}", h.RedirectHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(h.auth.Handler)
		r.Use(middleware.Gzip)

		r.Route("/links", func(r chi.Router) {
			r.Post("/", h.CreateLinkHandler)
			r.Get("/", h.ListLinksHandler)
			r.Route("/{linkID}", func(r chi.Router) {
				r.Get("/", h.GetLinkHandler)
				r.Patch("/", h.UpdateLinkHandler)
				r.Delete("/", h.DeleteLinkHandler)
				r.Post("/tags", h.AttachTagsHandler)
				r.Post("/tags/remove", h.DetachTagsHandler)
			})
		})

		r.Route("/tags", func(r chi.Router) {
			r.Post("/", h.CreateTagHandler)
			r.Get("/", h.ListTagsHandler)
			r.Route("/{tagID}", func(r chi.Router) {
				r.Patch("/", h.RenameTagHandler)
				r.Delete("/", h.DeleteTagHandler)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	return r
}
