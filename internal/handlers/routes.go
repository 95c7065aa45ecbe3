package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/jrennick/gambit/internal/middleware"
)

// Routes assembles the HTTP surface: account endpoints, game lifecycle REST
// endpoints, and the per-game WebSocket upgrade.
func Routes(s *Server, logger *logrus.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.LogMiddleware(logger))

	r.Post("/user/create", s.CreateUserHandler)
	r.Post("/user/login", s.LoginHandler)

	r.Route("/games", func(r chi.Router) {
		r.Post("/", s.CreateGameHandler)
		r.Get("/", s.ListGamesHandler)
		r.Get("/{id}", s.GetGameHandler)
		r.Get("/{id}/replay", s.ReplayHandler)
		r.Post("/{id}/join", s.JoinHandler)
		r.Post("/{id}/move", s.MoveHandler)
		r.Post("/{id}/resign", s.ResignHandler)
		r.Post("/{id}/draw/offer", s.OfferDrawHandler)
		r.Post("/{id}/draw/accept", s.AcceptDrawHandler)
		r.Post("/{id}/draw/decline", s.DeclineDrawHandler)
		r.Post("/{id}/takeback/request", s.RequestTakebackHandler)
		r.Post("/{id}/takeback/accept", s.AcceptTakebackHandler)
		r.Post("/{id}/takeback/decline", s.DeclineTakebackHandler)
		r.Post("/{id}/abort", s.AbortHandler)
		r.Get("/ws/{id}", s.GameWSHandler)
	})

	return r
}
