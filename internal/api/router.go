package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/balaraja1/katie-kormanik/internal/publisher"
)

// NewRouter creates a chi router with the publish route mounted behind
// Bearer auth. Non-POST methods on the route get chi's 405.
func NewRouter(svc *publisher.Service, adminSecret string) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(adminSecret))
	r.Post("/publish", h.Publish)
	return r
}
