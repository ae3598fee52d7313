package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/brk3/habitledger/internal/config"
	"github.com/brk3/habitledger/internal/logger"
	"github.com/brk3/habitledger/internal/storage"
	"github.com/brk3/habitledger/internal/tracker"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	cfg     *config.Config
	tracker *tracker.Tracker
	keys    *apiKeyStore

	authProviders map[string]*AuthProvider
	sessionCookie *securecookie.SecureCookie
}

// New builds the HTTP boundary over tr. store holds API keys when auth is
// enabled; it is normally the same store the tracker persists to.
func New(cfg *config.Config, tr *tracker.Tracker, store storage.Store) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server: nil config")
	}
	s := &Server{
		cfg:     cfg,
		tracker: tr,
		keys:    newAPIKeyStore(store),
	}
	if cfg.AuthEnabled {
		providers, cookie, err := ConfigureOIDCProviders(cfg)
		if err != nil {
			return nil, fmt.Errorf("configure auth: %w", err)
		}
		s.authProviders = providers
		s.sessionCookie = cookie
	}
	return s, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(metricsMiddleware)

	r.Get("/version", s.getVersionInfo)
	r.Get("/healthz", s.getHealth)
	r.Handle("/metrics", promhttp.Handler())

	if s.cfg.AuthEnabled {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", s.simpleLogin)
			r.Get("/login/{id}", s.login)
			r.Get("/callback/{id}", s.callback)
			r.Post("/logout", s.logout)
			r.Get("/token", s.getAPIToken)
			r.Group(func(r chi.Router) {
				r.Use(s.authMiddleware)
				r.Post("/api_keys", s.generateAPIKey)
				r.Get("/api_keys", s.listAPIKeys)
			})
		})
	}

	r.Group(func(r chi.Router) {
		if s.cfg.AuthEnabled {
			r.Use(s.authMiddleware)
			r.Use(s.userAwareMetricsMiddleware)
		}

		r.Route("/habits", func(r chi.Router) {
			r.Get("/", s.listHabits)
			r.Post("/", s.addHabit)
			r.Patch("/{habit_id}", s.renameHabit)
			r.Delete("/{habit_id}", s.removeHabit)
		})

		r.Route("/days", func(r chi.Router) {
			r.Delete("/", s.resetAll)
			r.Get("/{date}", s.getDay)
			r.Delete("/{date}", s.resetDay)
			r.Post("/{date}/habits/{habit_id}/toggle", s.toggleHabit)
			r.Put("/{date}/mood", s.setMood)
			r.Put("/{date}/notes", s.setNotes)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/week/{date}", s.getWeek)
			r.Get("/month/{year}/{month}", s.getMonth)
			r.Get("/badges", s.getBadges)
		})

		r.Get("/cursor", s.getCursor)
		r.Post("/cursor", s.moveCursor)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.DebugContext(r.Context(), "Handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
