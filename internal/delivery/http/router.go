package http

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"guestcheckin/internal/delivery/http/controllers"
	"guestcheckin/internal/delivery/http/middleware"
	"guestcheckin/internal/domain"
)

// RouterConfig holds what NewRouter wires together.
type RouterConfig struct {
	Logger             *slog.Logger
	Registry           domain.RegistryService
	Auth               domain.AuthService
	Verifier           domain.TokenVerifier
	CORSAllowedOrigins []string
}

// NewRouter initializes the HTTP router with all application routes,
// wrapped in panic recovery, request logging and CORS.
func NewRouter(cfg RouterConfig) http.Handler {
	events := controllers.NewEventController(cfg.Logger, cfg.Registry)
	notifications := controllers.NewNotificationController(cfg.Logger, cfg.Registry)
	auth := controllers.NewAuthController(cfg.Logger, cfg.Auth)
	requireAuth := middleware.RequireAuth(cfg.Verifier, cfg.Logger)

	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /auth/challenge", auth.Challenge)
	mux.HandleFunc("POST /auth/login", auth.Login)

	// Factory
	mux.HandleFunc("POST /events", requireAuth(events.CreateEvent))
	mux.HandleFunc("GET /events", events.ListEvents)
	mux.HandleFunc("GET /events/index/{index}", events.EventAt)

	// Registry
	mux.HandleFunc("GET /events/{address}", events.GetEvent)
	mux.HandleFunc("PATCH /events/{address}/status", requireAuth(events.SetEventStatus))
	mux.HandleFunc("PUT /events/{address}/owner", requireAuth(events.TransferOwnership))
	mux.HandleFunc("DELETE /events/{address}/owner", requireAuth(events.RenounceOwnership))
	mux.HandleFunc("GET /events/{address}/digest", events.Digest)
	mux.HandleFunc("POST /events/{address}/verify", events.VerifySignature)
	mux.HandleFunc("POST /events/{address}/check-ins", requireAuth(events.CheckIn))
	mux.HandleFunc("GET /events/{address}/attendees", events.ListAttendees)
	mux.HandleFunc("GET /events/{address}/attendees/{attendee}", events.HasAttended)

	// Notifications
	mux.HandleFunc("GET /notifications", notifications.ListNotifications)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = mux
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(cfg.Logger, handler)
	return chimiddleware.Recoverer(handler)
}
