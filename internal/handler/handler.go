package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/trainer/internal/handler/views"
	"github.com/pavelanni/trainer/internal/model"
	"github.com/pavelanni/trainer/internal/quiz"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	sessions *quiz.Registry
	subjects []model.Subject
	config   model.QuizConfig
}

// New creates a new Handler.
func New(sessions *quiz.Registry, subjects []model.Subject, cfg model.QuizConfig) *Handler {
	return &Handler{sessions: sessions, subjects: subjects, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(h.csrfMiddleware)
		r.Use(h.quizSession)

		r.Get("/", h.handleIndex)
		r.Get("/progress", h.handleProgress)
		r.Get("/api/progress", h.handleProgressJSON)
		r.Post("/tasks/{questionID}/answer", h.handleAnswer)
		r.Post("/tasks/{questionID}/check", h.handleCheck)
		r.Post("/reset", h.handleReset)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	var page model.PageView
	if !h.withSession(w, r, func(s *quiz.Session) {
		page = model.PageView{
			Tab:      model.ParseTab(r.URL.Query().Get("tab")),
			Tasks:    s.Tasks(),
			Subjects: h.subjects,
			Progress: s.Progress(),
		}
	}) {
		return
	}
	renderHTML(w, r, views.QuizPage(page))
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	var progress model.Progress
	if !h.withSession(w, r, func(s *quiz.Session) { progress = s.Progress() }) {
		return
	}
	renderHTML(w, r, views.ProgressFragment(progress, false))
}

func (h *Handler) handleProgressJSON(w http.ResponseWriter, r *http.Request) {
	var progress model.Progress
	if !h.withSession(w, r, func(s *quiz.Session) { progress = s.Progress() }) {
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	questionID, ok := parseQuestionID(w, r)
	if !ok {
		return
	}
	answer := r.FormValue("answer")

	var (
		task  model.TaskView
		found bool
	)
	if !h.withSession(w, r, func(s *quiz.Session) {
		var q model.Question
		if q, found = s.Question(questionID); !found {
			return
		}
		s.RecordAnswerEdit(questionID, answer)
		task = s.Task(q)
	}) {
		return
	}
	if !found {
		http.Error(w, "question not found", http.StatusNotFound)
		return
	}

	if !isHTMX(r) {
		http.Redirect(w, r, h.taskAnchor(questionID), http.StatusSeeOther)
		return
	}
	renderHTML(w, r, views.CheckButton(task))
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	questionID, ok := parseQuestionID(w, r)
	if !ok {
		return
	}
	// Forms post the current input value along with the check, so a
	// browser without htmx still records the edit first.
	answer := r.PostFormValue("answer")
	_, hasAnswer := r.PostForm["answer"]

	var (
		task     model.TaskView
		progress model.Progress
		found    bool
		checked  bool
	)
	if !h.withSession(w, r, func(s *quiz.Session) {
		var q model.Question
		if q, found = s.Question(questionID); !found {
			return
		}
		if hasAnswer {
			s.RecordAnswerEdit(questionID, answer)
		}
		if checked = s.CanEvaluate(questionID); checked {
			result := s.Evaluate(questionID)
			slog.Debug("answer checked", "question_id", questionID, "result", result, "solved", s.SolvedCount())
		}
		task = s.Task(q)
		progress = s.Progress()
	}) {
		return
	}
	if !found {
		http.Error(w, "question not found", http.StatusNotFound)
		return
	}

	if !isHTMX(r) {
		http.Redirect(w, r, h.taskAnchor(questionID), http.StatusSeeOther)
		return
	}
	if !checked {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	renderHTML(w, r, views.TaskCard(task), views.ProgressFragment(progress, true))
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	token := sessionTokenFromContext(r.Context())
	if !h.sessions.Reset(token) {
		slog.Warn("reset for unknown quiz session")
	}
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", h.path("/"))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, h.path("/"), http.StatusSeeOther)
}

// withSession runs fn on the request's quiz session. It writes an error and
// returns false if the session vanished between middleware and handler.
func (h *Handler) withSession(w http.ResponseWriter, r *http.Request, fn func(*quiz.Session)) bool {
	token := sessionTokenFromContext(r.Context())
	if h.sessions.With(token, fn) {
		return true
	}
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", h.path("/"))
		w.WriteHeader(http.StatusGone)
		return false
	}
	http.Redirect(w, r, h.path("/"), http.StatusSeeOther)
	return false
}

func (h *Handler) taskAnchor(questionID int64) string {
	return fmt.Sprintf("%s#task-%d", h.path("/"), questionID)
}

func parseQuestionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "questionID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid question ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func renderHTML(w http.ResponseWriter, r *http.Request, components ...templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	for _, c := range components {
		if err := c.Render(r.Context(), w); err != nil {
			slog.Error("render error", "error", err)
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode JSON", "error", err)
	}
}
