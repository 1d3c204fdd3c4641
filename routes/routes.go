package routes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/tournament-engine/docs" // регистрирует swagger.json в swag
	"github.com/Dosada05/tournament-engine/handlers"
	"github.com/Dosada05/tournament-engine/middleware"
)

type Handlers struct {
	Tournament      *handlers.TournamentHandler
	Round           *handlers.RoundHandler
	Match           *handlers.MatchHandler
	Participant     *handlers.ParticipantHandler
	RoundDefinition *handlers.RoundDefinitionHandler
	WebSocket       *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret          []byte
	CORSAllowedOrigins []string
	Logger             *slog.Logger
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	authenticate := middleware.Authenticate(opts.JWTSecret, logger)

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Браузер не может передать заголовок при upgrade, токен идёт в ?token=
	router.With(authenticate).Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Route("/api/tournaments", func(r chi.Router) {
		r.With(authenticate).Post("/", h.Tournament.CreateHandler)

		r.Route("/{tournamentID}", func(r chi.Router) {
			// Публичные маршруты
			r.Get("/", h.Tournament.GetByIDHandler)
			r.Get("/podium", h.Tournament.PodiumHandler)
			r.Get("/participants", h.Participant.ListHandler)
			r.Get("/participants/stats", h.Participant.StatsHandler)
			r.Get("/rounds/all", h.Round.AllRoundsHandler)
			r.Get("/rounds/{roundNumber}/organizer-status", h.Round.OrganizerStatusHandler)
			r.Get("/round-definitions", h.RoundDefinition.ListHandler)
			r.Get("/round-definitions/{roundNumber}", h.RoundDefinition.GetHandler)

			// Защищенные маршруты; права организатора проверяет сервис
			r.Group(func(r chi.Router) {
				r.Use(authenticate)

				r.Post("/activate", h.Tournament.ActivateHandler)
				r.Post("/cancel", h.Tournament.CancelHandler)
				r.Post("/complete", h.Tournament.CompleteHandler)

				r.Post("/participants", h.Participant.RegisterHandler)
				r.Post("/participants/{userID}/confirm", h.Participant.ConfirmHandler)

				r.Put("/round-definitions/{roundNumber}", h.RoundDefinition.UpdateHandler)

				r.Post("/rounds/start-first", h.Round.StartFirstHandler)
				r.Post("/rounds/start-next", h.Round.StartNextHandler)
				r.Post("/rounds/{roundNumber}/start", h.Round.StartRoundHandler)
				r.Post("/rounds/{roundNumber}/matches/{matchID}/start", h.Round.StartMatchHandler)
				r.Post("/rounds/{roundNumber}/extend", h.Round.ExtendHandler)

				r.Post("/matches/{matchID}/result", h.Match.SubmitResultHandler)
				r.Post("/matches/{matchID}/split", h.Match.SplitHandler)
			})
		})
	})
}
