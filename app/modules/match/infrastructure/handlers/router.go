package matchhandlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the match API. Mutating routes get the write middlewares.
func (h *MatchHandlers) Routes(r chi.Router, writeMiddlewares ...func(next http.Handler) http.Handler) {
	r.Get("/matches/{matchID}", h.GetMatch)
	r.Get("/tournaments/{tournamentID}/tracks", h.SelectTracks)

	r.Group(func(r chi.Router) {
		r.Use(writeMiddlewares...)
		r.Post("/players", h.CreatePlayer)
		r.Post("/teams/allocate", h.AllocateTeams)
		r.Post("/races/allocate", h.AllocateRaces)
		r.Post("/matches", h.CreateMatch)
		r.Post("/matches/{matchID}/rounds/{roundNumber}/results", h.RecordRoundResults)
		r.Post("/matches/{matchID}/rounds/{roundNumber}/swap", h.SwapRoundParticipant)
	})
}
