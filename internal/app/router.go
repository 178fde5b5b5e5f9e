package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/teamroom-io/teamroom/internal/auth"
	"github.com/teamroom-io/teamroom/internal/reservations"
	"github.com/teamroom-io/teamroom/internal/rooms"
	"github.com/teamroom-io/teamroom/internal/teams"
	"github.com/teamroom-io/teamroom/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	AuthService         *auth.Service
	AuthHandler         *auth.Handler
	UsersHandler        *users.Handler
	TeamsHandler        *teams.Handler
	RoomsHandler        *rooms.Handler
	ReservationsHandler *reservations.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
		Auth:   auth.Middleware(params.AuthService, params.Logger),
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/v1", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)
		params.UsersHandler.MountRoutes(r)
		params.TeamsHandler.MountRoutes(r)
		params.RoomsHandler.MountRoutes(r)
		params.ReservationsHandler.MountRoutes(r)
	})

	return r
}
