package web

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"telegram-subscription-gate/internal/infra/logging"
	"telegram-subscription-gate/internal/infra/metrics"
	"telegram-subscription-gate/internal/usecase"
)

// Server is the read-only admin API mounted under /api/v1.
type Server struct {
	statsUC usecase.StatsUseCase
	userUC  usecase.UserUseCase
	apiKey  string
	auth    *AuthManager
	log     *zerolog.Logger
}

func NewServer(
	statsUC usecase.StatsUseCase,
	userUC usecase.UserUseCase,
	apiKey string,
	auth *AuthManager,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		statsUC: statsUC,
		userUC:  userUC,
		apiKey:  apiKey,
		auth:    auth,
		log:     logger,
	}
}

// Routes returns the admin route tree, relative to its mount point.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(instrument)

	r.Post("/login", s.loginHandler)
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/stats", statsHandler(s.statsUC))
		r.Get("/users/{id}", userGetHandler(s.userUC))
	})
	return r
}

// authMiddleware accepts a JWT minted by /login, as a Bearer header or the session cookie.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			l := logging.With(r.Context(), s.log)
			l.Warn().Err(err).Msg("admin api: rejected credentials")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loginHandler exchanges the static API key for a short-lived JWT.
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-API-Key")
	if s.apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) != 1 {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	token, exp, err := s.auth.Mint(w)
	if err != nil {
		s.log.Error().Err(err).Msg("admin api: mint token")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}{Token: token, ExpiresAt: exp})
}

// instrument records per-route call counts and latency.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.ObserveAdminAPI(route, ww.status, time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
