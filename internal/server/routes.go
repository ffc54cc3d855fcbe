package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"trade_pilot/pkg/httpx/reply"
)

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Route("/session", func(r chi.Router) {
				r.Get("/", handler(s.getV1Session))
				r.Get("/log", handler(s.getV1SessionLog))
				r.Post("/control", handler(s.postV1SessionControl))
				r.Post("/{command}", handler(s.postV1SessionCommand))
			})
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
