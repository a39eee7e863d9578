// Package api serves the quiz over HTTP: bird metadata, ad-hoc question
// sets, server-side sessions and per-user history.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/birdquiz/birdquiz/internal/auth"
	"github.com/birdquiz/birdquiz/internal/metrics"
	"github.com/birdquiz/birdquiz/internal/quiz"
	"github.com/birdquiz/birdquiz/internal/scoring"
	"github.com/birdquiz/birdquiz/internal/session"
)

// Backend is what the HTTP layer needs from storage.
type Backend interface {
	quiz.DataService
	Families(ctx context.Context) ([]string, error)
	Orders(ctx context.Context) ([]string, error)
	IncorrectQuestions(ctx context.Context, userID string, limit int) ([]quiz.Answer, error)
	QuestionByID(ctx context.Context, id string) (quiz.Question, error)
}

// Options configures a Server. Zero values fall back to the defaults below.
type Options struct {
	AllowedOrigins    []string
	RequestsPerSecond float64
	Burst             int
	SessionTTL        time.Duration
	DefaultCount      int
	Policy            scoring.Policy
	Logger            *zap.Logger

	// Metrics is optional. When nil no /metrics route is mounted.
	Metrics *metrics.Metrics

	// Auth is optional. When nil every request is anonymous.
	Auth *auth.Service

	Now func() time.Time
}

const (
	defaultSessionTTL = 30 * time.Minute
	defaultRate       = 10
	defaultBurst      = 20
	maxQuestionCount  = 50
)

func (o Options) withDefaults() Options {
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = []string{"*"}
	}
	if o.RequestsPerSecond <= 0 {
		o.RequestsPerSecond = defaultRate
	}
	if o.Burst <= 0 {
		o.Burst = defaultBurst
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = defaultSessionTTL
	}
	if o.DefaultCount <= 0 {
		o.DefaultCount = session.DefaultQuestionCount
	}
	if o.Policy == "" {
		o.Policy = scoring.DefaultPolicy
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Server holds the router and the live sessions.
type Server struct {
	backend  Backend
	opts     Options
	log      *zap.Logger
	sessions *registry
	limiter  *ipLimiter
	router   chi.Router
}

// New builds a Server and its routes.
func New(backend Backend, opts Options) *Server {
	opts = opts.withDefaults()
	s := &Server{
		backend:  backend,
		opts:     opts,
		log:      opts.Logger.Named("api"),
		sessions: newRegistry(),
		limiter:  newIPLimiter(opts.RequestsPerSecond, opts.Burst, opts.Now),
	}
	s.router = s.routes()
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if s.opts.Metrics != nil {
		r.Use(s.opts.Metrics.Middleware)
	}
	if s.opts.Auth != nil {
		r.Use(s.opts.Auth.Middleware)
	}

	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/quiz/random", s.handleRandomQuiz)
		r.Get("/birds/families", s.handleFamilies)
		r.Get("/birds/orders", s.handleOrders)

		r.Route("/sessions", func(r chi.Router) {
			r.Use(s.limiter.middleware)
			r.Post("/", s.handleStartSession)
			r.Get("/{id}", s.handleGetSession)
			r.Post("/{id}/answers", s.handleSubmit)
			r.Delete("/{id}", s.handleDeleteSession)
		})

		r.Route("/me", func(r chi.Router) {
			r.Use(auth.RequireUser)
			r.Get("/stats", s.handleStats)
			r.Get("/history", s.handleHistory)
			r.Get("/answers", s.handleAnswers)
			r.Get("/review", s.handleReview)
		})
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// Sweep closes sessions idle for longer than the session TTL and drops idle
// rate-limit buckets. It returns the number of sessions closed.
func (s *Server) Sweep() int {
	n := s.sessions.sweep(s.opts.Now(), s.opts.SessionTTL)
	s.limiter.sweep(s.opts.SessionTTL)
	s.setActive()
	if n > 0 {
		s.log.Info("expired sessions closed", zap.Int("count", n))
	}
	return n
}

// RunJanitor calls Sweep every interval until ctx is done.
func (s *Server) RunJanitor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

// Shutdown closes every live session.
func (s *Server) Shutdown() {
	n := s.sessions.sweep(s.opts.Now(), -1)
	s.setActive()
	s.log.Info("sessions closed", zap.Int("count", n))
}

func (s *Server) setActive() {
	if s.opts.Metrics != nil {
		s.opts.Metrics.SessionsActive.Set(float64(s.sessions.len()))
	}
}
