package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/birdquiz/birdquiz/internal/auth"
	"github.com/birdquiz/birdquiz/internal/quiz"
	"github.com/birdquiz/birdquiz/internal/scoring"
	"github.com/birdquiz/birdquiz/internal/session"
	"github.com/birdquiz/birdquiz/internal/stats"
)

func (s *Server) handleRandomQuiz(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	count := s.opts.DefaultCount
	if v := q.Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxQuestionCount {
			writeErr(w, http.StatusBadRequest, "count must be between 1 and "+strconv.Itoa(maxQuestionCount))
			return
		}
		count = n
	}
	d, err := quiz.ParseDifficulty(q.Get("difficulty"))
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}

	qs, err := s.backend.FetchQuestions(r.Context(), count, quiz.Filter{Category: q.Get("category"), Difficulty: d})
	if err != nil {
		s.fail(w, "fetch questions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": qs, "count": len(qs)})
}

func (s *Server) handleFamilies(w http.ResponseWriter, r *http.Request) {
	fs, err := s.backend.Families(r.Context())
	if err != nil {
		s.fail(w, "list families", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"families": fs, "count": len(fs)})
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.backend.Orders(r.Context())
	if err != nil {
		s.fail(w, "list orders", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders, "count": len(orders)})
}

type startRequest struct {
	Count      int    `json:"count"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Policy     string `json:"policy"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Count < 0 || req.Count > maxQuestionCount {
		writeErr(w, http.StatusBadRequest, "count must be between 1 and "+strconv.Itoa(maxQuestionCount))
		return
	}
	if req.Count == 0 {
		req.Count = s.opts.DefaultCount
	}
	d, err := quiz.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	policy := s.opts.Policy
	if req.Policy != "" {
		if policy, err = scoring.ParsePolicy(req.Policy); err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	owner, _ := auth.UserFromContext(r.Context())
	sess := session.New(s.backend, session.Options{
		Count:  req.Count,
		Filter: quiz.Filter{Category: req.Category, Difficulty: d},
		Policy: policy,
		Logger: s.log,
		Now:    s.opts.Now,
	})
	if err := sess.Load(r.Context()); err != nil {
		sess.Close()
		s.fail(w, "start session", err)
		return
	}

	now := s.opts.Now()
	s.sessions.put(&entry{sess: sess, owner: owner, lastSeen: now})
	if m := s.opts.Metrics; m != nil {
		m.SessionsStarted.Inc()
	}
	s.setActive()
	s.log.Info("session started",
		zap.String("session_id", sess.ID()),
		zap.Bool("identified", owner != ""),
		zap.Int("questions", sess.Total()))

	writeJSON(w, http.StatusCreated, newSessionView(sess, now))
}

// lookup finds the caller's session or writes 404.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*entry, bool) {
	owner, _ := auth.UserFromContext(r.Context())
	e, ok := s.sessions.get(chi.URLParam(r, "id"), owner, s.opts.Now())
	if !ok {
		writeErr(w, http.StatusNotFound, "session not found")
	}
	return e, ok
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	e.mu.Lock()
	v := newSessionView(e.sess, s.opts.Now())
	e.mu.Unlock()
	writeJSON(w, http.StatusOK, v)
}

type submitRequest struct {
	Answer string `json:"answer"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}

	e.mu.Lock()
	out, err := e.sess.Submit(r.Context(), req.Answer)
	var v outcomeView
	if err == nil {
		v = newOutcomeView(e.sess, out, s.opts.Now())
	}
	e.mu.Unlock()

	if err != nil {
		writeErr(w, statusFor(err), err.Error())
		return
	}
	s.observe(out)
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) observe(out *session.Outcome) {
	m := s.opts.Metrics
	if m == nil {
		return
	}
	m.ObserveAnswer(out.Validation)
	if out.AnswerSaveErr != nil {
		m.PersistFailures.WithLabelValues("answer").Inc()
	}
	if out.ResultSaveErr != nil {
		m.PersistFailures.WithLabelValues("result").Inc()
	}
	if out.Completed {
		m.ObserveResult(out.Result)
	}
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.sessions.remove(e.sess.ID())
	s.setActive()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserFromContext(r.Context())
	sum, err := stats.Compute(r.Context(), s.backend, userID, s.opts.Now())
	if err != nil {
		s.fail(w, "compute stats", err)
		return
	}
	levelTimes := make(map[string]int, len(sum.Quizzes.ByDifficulty))
	for level, d := range sum.Quizzes.ByDifficulty {
		levelTimes[level] = int(d.AverageTime / time.Second)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"answers":                 sum.Answers,
		"quizzes":                 sum.Quizzes,
		"streaks":                 sum.Streaks,
		"total_study_time":        int(sum.Quizzes.TotalStudyTime / time.Second),
		"average_time":            int(sum.Quizzes.AverageTime / time.Second),
		"difficulty_average_time": levelTimes,
		"recent_results":          newResultViews(sum.Recent),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, stats.RecentResultsWindow)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, _ := auth.UserFromContext(r.Context())
	rs, err := s.backend.QuizHistory(r.Context(), userID, limit)
	if err != nil {
		s.fail(w, "quiz history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": newResultViews(rs), "count": len(rs)})
}

func (s *Server) handleAnswers(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 100)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, _ := auth.UserFromContext(r.Context())
	as, err := s.backend.AnswerHistory(r.Context(), userID, limit)
	if err != nil {
		s.fail(w, "answer history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"answers": newAnswerViews(as), "count": len(as)})
}

type reviewItem struct {
	Answer   answerView    `json:"answer"`
	Question *questionView `json:"question,omitempty"`
}

// handleReview lists recent misses with their questions rebuilt. Misses
// whose bird or image has since been removed are listed without a question.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 20)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	}
	userID, _ := auth.UserFromContext(r.Context())
	misses, err := s.backend.IncorrectQuestions(r.Context(), userID, limit)
	if err != nil {
		s.fail(w, "incorrect questions", err)
		return
	}

	items := make([]reviewItem, 0, len(misses))
	for _, av := range newAnswerViews(misses) {
		item := reviewItem{Answer: av}
		q, err := s.backend.QuestionByID(r.Context(), av.QuestionID)
		switch {
		case err == nil:
			item.Question = newQuestionView(q)
		case !errors.Is(err, quiz.ErrNotFound):
			s.log.Warn("review question unavailable", zap.String("question_id", av.QuestionID), zap.Error(err))
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

// fail logs server errors and writes the mapped status.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error(op+" failed", zap.Error(err))
		writeErr(w, status, "internal error")
		return
	}
	writeErr(w, status, err.Error())
}
