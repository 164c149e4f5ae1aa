package model

import (
	"context"
	"time"
)

type basePathCtxKey struct{}

// ContextWithBasePath stores the base path prefix in context.
func ContextWithBasePath(ctx context.Context, basePath string) context.Context {
	return context.WithValue(ctx, basePathCtxKey{}, basePath)
}

// BasePathFromContext retrieves the base path from context (empty string if not set).
func BasePathFromContext(ctx context.Context) string {
	bp, _ := ctx.Value(basePathCtxKey{}).(string)
	return bp
}

type csrfCtxKey struct{}

// ContextWithCSRFToken stores the CSRF token in context.
func ContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfCtxKey{}, token)
}

// CSRFTokenFromContext retrieves the CSRF token from context.
func CSRFTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(csrfCtxKey{}).(string)
	return t
}

// Result is the outcome of checking a question's answer.
type Result int

const (
	Unevaluated Result = iota
	Correct
	Incorrect
)

func (r Result) String() string {
	switch r {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "unevaluated"
	}
}

// Question is an immutable quiz item.
type Question struct {
	ID          int64  `json:"id"`
	Prompt      string `json:"question"`
	Answer      string `json:"answer"`
	Subject     string `json:"subject"`
	Topic       string `json:"topic"`
	Explanation string `json:"explanation"`
}

// Subject is descriptive catalog data shown on the subjects tab.
type Subject struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Image       string `json:"image"`
	Description string `json:"description"`
	TaskCount   int    `json:"tasks_count"`
}

// Progress is a snapshot of a session's completion counter.
type Progress struct {
	Solved  int     `json:"solved"`
	Total   int     `json:"total"`
	Ratio   float64 `json:"ratio"`
	Percent int     `json:"percent"`
}

// QuizConfig holds runtime parameters set via CLI flags.
type QuizConfig struct {
	BasePath      string        // URL prefix for sub-path deployments (e.g. "/ege")
	SecureCookies bool          // Set Secure flag on cookies (disable for local dev)
	SessionTTL    time.Duration // idle time after which a quiz session is discarded
}

// TaskView combines a question with its per-session state for display.
type TaskView struct {
	Question           Question
	Answer             string
	Result             Result
	ExplanationVisible bool
	CanCheck           bool
}

// Tab selects the panel shown below the progress card.
type Tab string

const (
	TabTasks    Tab = "tasks"
	TabSubjects Tab = "subjects"
)

// ParseTab maps a query value to a tab, defaulting to the tasks tab.
func ParseTab(s string) Tab {
	if Tab(s) == TabSubjects {
		return TabSubjects
	}
	return TabTasks
}

// PageView is everything the quiz page renders.
type PageView struct {
	Tab      Tab
	Tasks    []TaskView
	Subjects []Subject
	Progress Progress
}
