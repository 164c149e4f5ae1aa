// Package quiz holds the per-visitor quiz session: submitted answers,
// check results, revealed explanations and the solved counter.
package quiz

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pavelanni/trainer/internal/model"
)

// Session is the mutable state of one quiz visit over a fixed question set.
// It is not safe for concurrent use; the host serialises access.
type Session struct {
	questions []model.Question
	byID      map[int64]int

	answers  map[int64]string
	results  map[int64]model.Result
	revealed map[int64]bool
	counted  map[int64]bool
	solved   int
}

// NewSession creates an empty session over questions. The slice is not copied
// and must not be modified afterwards.
func NewSession(questions []model.Question) *Session {
	byID := make(map[int64]int, len(questions))
	for i, q := range questions {
		byID[q.ID] = i
	}
	return &Session{
		questions: questions,
		byID:      byID,
		answers:   make(map[int64]string),
		results:   make(map[int64]model.Result),
		revealed:  make(map[int64]bool),
		counted:   make(map[int64]bool),
	}
}

// RecordAnswerEdit stores the latest text entered for a question.
// Unknown IDs are kept as orphan entries and never rendered.
func (s *Session) RecordAnswerEdit(questionID int64, text string) {
	s.answers[questionID] = text
}

// Evaluate checks the submitted answer against the canonical one and reveals
// the explanation. A blank answer or an unknown question leaves the session
// untouched and returns the question's current result.
func (s *Session) Evaluate(questionID int64) model.Result {
	q, ok := s.Question(questionID)
	if !ok || !s.CanEvaluate(questionID) {
		return s.results[questionID]
	}

	result := model.Incorrect
	if Normalize(s.answers[questionID]) == Normalize(q.Answer) {
		result = model.Correct
	}

	s.results[questionID] = result
	s.revealed[questionID] = true

	// Counted once per question; a later wrong answer does not take it back.
	if result == model.Correct && !s.counted[questionID] {
		s.counted[questionID] = true
		s.solved++
	}
	return result
}

// CanEvaluate reports whether the question has a non-blank submitted answer.
func (s *Session) CanEvaluate(questionID int64) bool {
	return strings.TrimSpace(s.answers[questionID]) != ""
}

// Normalize trims surrounding whitespace and lowercases with full Unicode
// case mapping. Internal whitespace and punctuation are kept.
func Normalize(text string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(text))
}

// Answer returns the latest submitted text for a question.
func (s *Session) Answer(questionID int64) string {
	return s.answers[questionID]
}

// Result returns the latest check result for a question.
func (s *Session) Result(questionID int64) model.Result {
	return s.results[questionID]
}

// ExplanationVisible reports whether the question has been checked at least once.
func (s *Session) ExplanationVisible(questionID int64) bool {
	return s.revealed[questionID]
}

// SolvedCount returns the number of questions that have reached Correct at least once.
func (s *Session) SolvedCount() int {
	return s.solved
}

// Total returns the size of the question set.
func (s *Session) Total() int {
	return len(s.questions)
}

// Questions returns the fixed question set in display order.
func (s *Session) Questions() []model.Question {
	return s.questions
}

// Question looks up a question by ID.
func (s *Session) Question(questionID int64) (model.Question, bool) {
	i, ok := s.byID[questionID]
	if !ok {
		return model.Question{}, false
	}
	return s.questions[i], true
}

// ProgressRatio returns solved/total in [0, 1], or 0 for an empty set.
func (s *Session) ProgressRatio() float64 {
	if len(s.questions) == 0 {
		return 0
	}
	return math.Min(1, float64(s.solved)/float64(len(s.questions)))
}

// ProgressPercent returns the progress ratio as a rounded whole percent.
func (s *Session) ProgressPercent() int {
	return int(math.Round(s.ProgressRatio() * 100))
}

// Progress returns a snapshot of the completion counter.
func (s *Session) Progress() model.Progress {
	return model.Progress{
		Solved:  s.solved,
		Total:   len(s.questions),
		Ratio:   s.ProgressRatio(),
		Percent: s.ProgressPercent(),
	}
}

// Task builds the display view of one question.
func (s *Session) Task(q model.Question) model.TaskView {
	return model.TaskView{
		Question:           q,
		Answer:             s.answers[q.ID],
		Result:             s.results[q.ID],
		ExplanationVisible: s.revealed[q.ID],
		CanCheck:           s.CanEvaluate(q.ID),
	}
}

// Tasks builds display views for the whole question set.
func (s *Session) Tasks() []model.TaskView {
	tasks := make([]model.TaskView, 0, len(s.questions))
	for _, q := range s.questions {
		tasks = append(tasks, s.Task(q))
	}
	return tasks
}
