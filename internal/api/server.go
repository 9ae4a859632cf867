// Package api provides the HTTP server for EcoPlus.
// It exposes the JSON API consumed by the web client and the /ws push channel.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/ecoplus-hub/ecoplus/internal/app/account"
	"github.com/ecoplus-hub/ecoplus/internal/app/community"
	"github.com/ecoplus-hub/ecoplus/internal/app/engagement"
	"github.com/ecoplus-hub/ecoplus/internal/app/journey"
	"github.com/ecoplus-hub/ecoplus/internal/app/quiz"
	"github.com/ecoplus-hub/ecoplus/internal/domain"
	"github.com/ecoplus-hub/ecoplus/internal/health"
	"github.com/ecoplus-hub/ecoplus/internal/realtime"
	"github.com/ecoplus-hub/ecoplus/internal/security"
)

// Services are the application services the API fronts.
type Services struct {
	Accounts      *account.Service
	Tokens        *security.TokenIssuer
	Activity      *engagement.ActivityService
	Quiz          *quiz.Service
	Journeys      *journey.Service
	Social        *community.SocialService
	Events        *community.EventService
	Notifications *engagement.NotificationService
	Hub           *realtime.Hub
	Health        *health.Checker // nil reports ok
}

// Server is the EcoPlus HTTP API server.
type Server struct {
	svc            Services
	log            *zap.Logger
	corsOrigins    []string
	cookieSecure   bool
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(svc Services, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, log: log}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetCORSOrigins sets the browser origins allowed to call the API with
// credentials.
func (s *Server) SetCORSOrigins(origins []string) { s.corsOrigins = origins }

// SetCookieSecure marks the session cookie Secure with SameSite=None, for
// deployments where the client is served from another site over HTTPS.
func (s *Server) SetCookieSecure(secure bool) { s.cookieSecure = secure }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
	}).Handler)

	r.Get("/health", s.handleHealth)

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// The websocket outlives any request timeout.
	r.With(s.optionalAuth).Get("/ws", s.handleWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(instrument)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.With(s.requireAuth).Get("/me", s.handleMe)
		})

		r.Route("/quiz", func(r chi.Router) {
			r.Get("/random", s.handleQuizRandom)
			r.With(s.optionalAuth).Post("/verify", s.handleQuizVerify)
		})

		r.Route("/activity", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/log", s.handleActivityLog)
			r.Get("/data", s.handleActivityData)
		})

		r.Route("/journey", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleJourneyLog)
			r.Get("/", s.handleJourneyList)
			r.Get("/stats", s.handleJourneyStats)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/leaderboard", s.handleLeaderboard)
			r.Get("/public/{id}", s.handlePublicProfile)
			r.With(s.requireAuth).Get("/me/profile", s.handleMyProfile)
			r.With(s.requireAuth).Put("/update-avatar", s.handleUpdateAvatar)
		})

		r.Get("/badges", s.handleBadges)

		r.Route("/social", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/create", s.handleCreatePost)
			r.Get("/feed", s.handleFeed)
			r.Get("/user/{userId}", s.handleUserPosts)
			r.Post("/{id}/like", s.handleLike)
			r.Post("/{id}/comment", s.handleComment)
			r.Post("/{id}/comment/{commentId}/react", s.handleReact)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.handleListEvents)
			r.With(s.requireAuth).Post("/create", s.handleCreateEvent)
			r.With(s.requireAuth).Post("/{id}/join", s.handleJoinEvent)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleNotifications)
			r.Put("/read-all", s.handleReadAll)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.svc.Health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status, code := "ok", http.StatusOK
	if !s.svc.Health.IsHealthy() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status": status,
		"checks": s.svc.Health.Statuses(),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeMessage writes a bare acknowledgement.
func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// fail maps err to a status code and writes it. Unknown errors are logged
// and reported as a generic server error.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, status, "Server error")
		return
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrPostNotFound),
		errors.Is(err, domain.ErrCommentNotFound),
		errors.Is(err, domain.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrMobileTaken):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrAlreadyVolunteered),
		errors.Is(err, domain.ErrInvalidOption),
		errors.Is(err, domain.ErrInvalidDay),
		errors.Is(err, domain.ErrInvalidTransport),
		errors.Is(err, domain.ErrInvalidDistance),
		errors.Is(err, domain.ErrFuelEfficiencyRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
