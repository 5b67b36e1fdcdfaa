package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/opencup/cup-system/handlers"
	"github.com/opencup/cup-system/middleware"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Tournament *handlers.TournamentHandler
	Bracket    *handlers.BracketHandler
	Match      *handlers.MatchHandler
	Team       *handlers.TeamHandler
	Player     *handlers.PlayerHandler
	WebSocket  *handlers.WebSocketHandler
}

// Setup wires every route. Reads are public; everything that mutates state
// sits behind the admin JWT.
func Setup(router *chi.Mux, h Handlers, auth *middleware.Authenticator, allowedOrigins []string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/login", h.Auth.LoginHandler)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.ListHandler)
		r.Get("/{tournamentID}", h.Tournament.GetByIDHandler)
		r.Get("/{tournamentID}/participants", h.Tournament.ListParticipantsHandler)
		r.Get("/{tournamentID}/bracket", h.Bracket.GetHandler)
		r.Get("/{tournamentID}/goal-events", h.Bracket.ListGoalEventsHandler)
		r.Get("/{tournamentID}/players", h.Bracket.ListPlayersHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Post("/", h.Tournament.CreateHandler)
			r.Put("/{tournamentID}", h.Tournament.UpdateHandler)
			r.Patch("/{tournamentID}", h.Tournament.UpdateHandler)
			r.Delete("/{tournamentID}", h.Tournament.DeleteHandler)
			r.Put("/{tournamentID}/participants", h.Tournament.ReplaceParticipantsHandler)
			r.Post("/{tournamentID}/participants", h.Tournament.ReplaceParticipantsHandler)
			r.Post("/{tournamentID}/generate-bracket", h.Bracket.GenerateHandler)
			r.Post("/{tournamentID}/bracket", h.Bracket.GenerateHandler)
			r.Put("/{tournamentID}/matches", h.Bracket.UpdatePairingsHandler)
			r.Patch("/{tournamentID}/matches", h.Bracket.UpdatePairingsHandler)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", h.Match.GetByIDHandler)
		r.Get("/{matchID}/goal-events", h.Match.ListGoalEventsHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Put("/{matchID}/result", h.Match.SetResultHandler)
			r.Patch("/{matchID}/result", h.Match.SetResultHandler)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", h.Team.ListHandler)
		r.Get("/{teamID}", h.Team.GetByIDHandler)
		r.Get("/{teamID}/players", h.Team.ListPlayersHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Post("/", h.Team.CreateHandler)
			r.Put("/{teamID}", h.Team.UpdateHandler)
			r.Patch("/{teamID}", h.Team.UpdateHandler)
			r.Post("/{teamID}/logo", h.Team.UploadLogoHandler)
			r.Delete("/{teamID}", h.Team.DeleteHandler)
		})
	})

	router.Route("/players", func(r chi.Router) {
		r.Get("/", h.Player.ListHandler)
		r.Get("/{playerID}", h.Player.GetByIDHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Post("/", h.Player.CreateHandler)
			r.Put("/{playerID}", h.Player.UpdateHandler)
			r.Patch("/{playerID}", h.Player.UpdateHandler)
			r.Post("/{playerID}/avatar", h.Player.UploadAvatarHandler)
			r.Delete("/{playerID}", h.Player.DeleteHandler)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)
}
