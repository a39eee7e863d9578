// Package metrics holds the Prometheus collectors of the quiz service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/birdquiz/birdquiz/internal/answer"
	"github.com/birdquiz/birdquiz/internal/quiz"
)

const namespace = "birdquiz"

// Metrics is a set of collectors registered on one registry.
type Metrics struct {
	RequestCounter   *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	SessionsStarted  prometheus.Counter
	SessionsActive   prometheus.Gauge
	AnswersSubmitted *prometheus.CounterVec
	QuizzesCompleted prometheus.Counter
	QuizScore        prometheus.Histogram
	PersistFailures  *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Quiz sessions whose questions loaded",
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Quiz sessions held in memory",
		}),
		AnswersSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "answers_submitted_total",
				Help:      "Accepted answers by verdict and match type",
			},
			[]string{"correct", "match_type"},
		),
		QuizzesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quizzes_completed_total",
			Help:      "Quiz sessions that reached completion",
		}),
		QuizScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quiz_accuracy_ratio",
			Help:      "Accuracy of completed quizzes",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		PersistFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persist_failures_total",
				Help:      "Answers or results that could not be saved",
			},
			[]string{"kind"},
		),
		gatherer: reg,
	}
	reg.MustRegister(
		m.RequestCounter,
		m.RequestDuration,
		m.SessionsStarted,
		m.SessionsActive,
		m.AnswersSubmitted,
		m.QuizzesCompleted,
		m.QuizScore,
		m.PersistFailures,
	)
	return m
}

// ObserveAnswer records one accepted submission.
func (m *Metrics) ObserveAnswer(v answer.Result) {
	m.AnswersSubmitted.WithLabelValues(strconv.FormatBool(v.Correct), string(v.MatchType)).Inc()
}

// ObserveResult records a completed quiz.
func (m *Metrics) ObserveResult(r *quiz.Result) {
	m.QuizzesCompleted.Inc()
	m.QuizScore.Observe(r.Accuracy())
}

// Middleware counts requests per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			endpoint = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.RequestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
