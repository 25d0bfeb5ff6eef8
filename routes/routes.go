package routes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	_ "github.com/zdenkokanos/MTAA-backend/docs"
	"github.com/zdenkokanos/MTAA-backend/handlers"
	"github.com/zdenkokanos/MTAA-backend/metrics"
	"github.com/zdenkokanos/MTAA-backend/middleware"
)

// Options - параметры маршрутизатора, не относящиеся к обработчикам.
type Options struct {
	JWTSecret          []byte
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
	Metrics            *metrics.Metrics
	Logger             *slog.Logger
}

type Handlers struct {
	Auth       *handlers.AuthHandler
	User       *handlers.UserHandler
	Team       *handlers.TeamHandler
	Tournament *handlers.TournamentHandler
	WebSocket  *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, h Handlers, opts Options) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(opts.Metrics.Middleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if opts.RateLimitRPS > 0 {
		limiter := middleware.NewIPRateLimiter(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst)
		router.Use(middleware.RateLimit(limiter))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
	})

	router.Get("/tournaments/categories", h.Tournament.ListCategories)
	router.Get("/tournaments/categories/{name}/id", h.Tournament.GetCategoryID)

	// WebSocket-клиенты не могут передать заголовок Authorization при подключении.
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.JWTSecret))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.User.ListUsers)
			r.Get("/by-email/{email}/id", h.User.GetUserIDByEmail)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/info", h.User.GetUser)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireSelf("id"))

					r.Get("/tournaments", h.User.ListCurrentTournaments)
					r.Get("/tournaments/history", h.User.ListTournamentHistory)
					r.Get("/tournaments/owned", h.User.ListOwnedTournaments)
					r.Get("/top-picks", h.User.GetTopPicks)
					r.Get("/tickets", h.User.ListTickets)
					r.Put("/password", h.User.ChangePassword)
					r.Put("/profile", h.User.UpdateProfile)
					r.Put("/preferences", h.User.UpdatePreferences)
					r.Post("/image", h.User.UploadImage)
					r.Post("/push-tokens", h.User.RegisterPushToken)
				})
			})
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.ListTournaments)
			r.Post("/", h.Tournament.CreateTournament)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/info", h.Tournament.GetTournament)
				r.Put("/", h.Tournament.UpdateTournament)
				r.Put("/start", h.Tournament.StartTournament)
				r.Put("/stop", h.Tournament.StopTournament)
				r.Post("/image", h.Tournament.UploadImage)

				r.Get("/enrolled", h.Team.ListEnrolledTeams)
				r.Get("/teams/count", h.Team.CountTeams)
				r.Post("/register", h.Team.CreateTeam)
				r.Post("/join_team", h.Team.JoinTeam)
				r.Post("/check-tickets", h.Team.CheckTicket)

				r.Get("/leaderboard", h.Tournament.GetLeaderboard)
				r.Post("/leaderboard", h.Tournament.SetLeaderboardPosition)
				r.Delete("/leaderboard/{teamID}", h.Tournament.RemoveFromLeaderboard)
			})
		})
	})
}
