package quiz

import (
	"testing"

	"github.com/pavelanni/trainer/internal/model"
)

func sampleQuestions() []model.Question {
	return []model.Question{
		{ID: 1, Prompt: "Решите уравнение: 2x + 5 = 13", Answer: "4", Subject: "Математика", Topic: "Линейные уравнения", Explanation: "x = 4"},
		{ID: 2, Prompt: "Найдите корень слова 'подземный'", Answer: "зем", Subject: "Русский язык", Topic: "Морфология", Explanation: "Корень 'зем'"},
		{ID: 3, Prompt: "Скорость света в вакууме (км/с)", Answer: "300000", Subject: "Физика", Topic: "Оптика", Explanation: "300 000 км/с"},
	}
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	return NewSession(sampleQuestions())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "4", "4"},
		{"surrounding spaces", "  4 ", "4"},
		{"tabs and newlines", "\t4\n", "4"},
		{"cyrillic upper", "ЗЕМ", "зем"},
		{"mixed case latin", "HeLLo", "hello"},
		{"internal space kept", " 300 000 ", "300 000"},
		{"punctuation kept", "x=4.", "x=4."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEvaluateMatching(t *testing.T) {
	tests := []struct {
		name   string
		id     int64
		answer string
		want   model.Result
	}{
		{"exact", 1, "4", model.Correct},
		{"whitespace around", 1, "  4 ", model.Correct},
		{"case-insensitive cyrillic", 2, "ЗЕМ", model.Correct},
		{"mixed case cyrillic", 2, " Зем\t", model.Correct},
		{"wrong number", 1, "5", model.Incorrect},
		{"internal whitespace significant", 3, "300 000", model.Incorrect},
		{"no numeric tolerance", 1, "4.0", model.Incorrect},
		{"no fuzzy match", 2, "земл", model.Incorrect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)
			s.RecordAnswerEdit(tt.id, tt.answer)
			if got := s.Evaluate(tt.id); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
			if got := s.Result(tt.id); got != tt.want {
				t.Errorf("Result() = %v, want %v", got, tt.want)
			}
			if !s.ExplanationVisible(tt.id) {
				t.Error("explanation should be visible after a check")
			}
		})
	}
}

func TestRecordAnswerEditDoesNotEvaluate(t *testing.T) {
	s := newTestSession(t)
	s.RecordAnswerEdit(1, "4")

	if got := s.Answer(1); got != "4" {
		t.Errorf("Answer(1) = %q, want %q", got, "4")
	}
	if got := s.Result(1); got != model.Unevaluated {
		t.Errorf("Result(1) = %v, want unevaluated", got)
	}
	if s.ExplanationVisible(1) {
		t.Error("explanation should be hidden before a check")
	}
	if s.SolvedCount() != 0 {
		t.Errorf("SolvedCount = %d, want 0", s.SolvedCount())
	}

	// Editing after a check keeps the previous result.
	s.Evaluate(1)
	s.RecordAnswerEdit(1, "")
	if got := s.Result(1); got != model.Correct {
		t.Errorf("Result(1) after edit = %v, want correct", got)
	}
	if !s.ExplanationVisible(1) {
		t.Error("explanation should stay visible after an edit")
	}
}

func TestSolvedCountScenario(t *testing.T) {
	s := newTestSession(t)

	s.RecordAnswerEdit(1, "  4 ")
	if got := s.Evaluate(1); got != model.Correct {
		t.Fatalf("first check = %v, want correct", got)
	}
	if s.SolvedCount() != 1 {
		t.Fatalf("SolvedCount = %d, want 1", s.SolvedCount())
	}

	s.RecordAnswerEdit(1, "5")
	if got := s.Evaluate(1); got != model.Incorrect {
		t.Fatalf("second check = %v, want incorrect", got)
	}
	if s.SolvedCount() != 1 {
		t.Fatalf("SolvedCount after incorrect = %d, want 1", s.SolvedCount())
	}
	if !s.ExplanationVisible(1) {
		t.Fatal("explanation should stay visible")
	}

	s.RecordAnswerEdit(1, "4")
	if got := s.Evaluate(1); got != model.Correct {
		t.Fatalf("third check = %v, want correct", got)
	}
	if s.SolvedCount() != 1 {
		t.Fatalf("SolvedCount after re-solve = %d, want 1", s.SolvedCount())
	}

	// Repeated correct checks never count twice.
	s.Evaluate(1)
	s.Evaluate(1)
	if s.SolvedCount() != 1 {
		t.Fatalf("SolvedCount after repeats = %d, want 1", s.SolvedCount())
	}
}

func TestSolvedCountKeepsOvercount(t *testing.T) {
	s := newTestSession(t)
	s.RecordAnswerEdit(2, "зем")
	s.Evaluate(2)
	s.RecordAnswerEdit(2, "корень")
	s.Evaluate(2)

	if s.Result(2) != model.Incorrect {
		t.Fatalf("Result(2) = %v, want incorrect", s.Result(2))
	}
	if s.SolvedCount() != 1 {
		t.Errorf("SolvedCount = %d, want 1 (not decremented)", s.SolvedCount())
	}
}

func TestEvaluateNoOps(t *testing.T) {
	tests := []struct {
		name   string
		id     int64
		answer *string
	}{
		{"never edited", 1, nil},
		{"empty", 1, ptr("")},
		{"whitespace only", 1, ptr(" \t\n ")},
		{"unknown question", 42, ptr("4")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)
			if tt.answer != nil {
				s.RecordAnswerEdit(tt.id, *tt.answer)
			}
			if got := s.Evaluate(tt.id); got != model.Unevaluated {
				t.Errorf("Evaluate() = %v, want unevaluated", got)
			}
			if s.ExplanationVisible(tt.id) {
				t.Error("explanation should stay hidden")
			}
			if s.SolvedCount() != 0 {
				t.Errorf("SolvedCount = %d, want 0", s.SolvedCount())
			}
		})
	}
}

func TestBlankRecheckKeepsPreviousResult(t *testing.T) {
	s := newTestSession(t)
	s.RecordAnswerEdit(3, "1")
	s.Evaluate(3)
	s.RecordAnswerEdit(3, "   ")

	if s.CanEvaluate(3) {
		t.Error("CanEvaluate should be false for whitespace-only answer")
	}
	if got := s.Evaluate(3); got != model.Incorrect {
		t.Errorf("Evaluate() on blank = %v, want previous incorrect", got)
	}
}

func TestOrphanAnswer(t *testing.T) {
	s := newTestSession(t)
	s.RecordAnswerEdit(99, "x")

	if got := s.Answer(99); got != "x" {
		t.Errorf("Answer(99) = %q, want %q", got, "x")
	}
	if _, ok := s.Question(99); ok {
		t.Error("Question(99) should not exist")
	}
	if len(s.Tasks()) != 3 {
		t.Errorf("Tasks() = %d, want 3", len(s.Tasks()))
	}
}

func TestProgress(t *testing.T) {
	s := newTestSession(t)
	if s.ProgressRatio() != 0 {
		t.Errorf("initial ratio = %v, want 0", s.ProgressRatio())
	}

	s.RecordAnswerEdit(1, "4")
	s.Evaluate(1)
	p := s.Progress()
	if p.Solved != 1 || p.Total != 3 {
		t.Errorf("Progress = %+v, want 1 of 3", p)
	}
	if p.Ratio != 1.0/3.0 {
		t.Errorf("Ratio = %v, want 1/3", p.Ratio)
	}
	if p.Percent != 33 {
		t.Errorf("Percent = %d, want 33", p.Percent)
	}

	s.RecordAnswerEdit(2, "ЗЕМ")
	s.Evaluate(2)
	if got := s.ProgressPercent(); got != 67 {
		t.Errorf("Percent = %d, want 67", got)
	}

	s.RecordAnswerEdit(3, "300000")
	s.Evaluate(3)
	if s.ProgressRatio() != 1 {
		t.Errorf("ratio = %v, want 1", s.ProgressRatio())
	}
}

func TestProgressEmptySet(t *testing.T) {
	s := NewSession(nil)
	if s.ProgressRatio() != 0 {
		t.Errorf("ratio = %v, want 0", s.ProgressRatio())
	}
	if s.ProgressPercent() != 0 {
		t.Errorf("percent = %d, want 0", s.ProgressPercent())
	}
}

func TestTaskView(t *testing.T) {
	s := newTestSession(t)
	q, _ := s.Question(2)

	tv := s.Task(q)
	if tv.CanCheck || tv.ExplanationVisible || tv.Result != model.Unevaluated {
		t.Errorf("fresh task view = %+v", tv)
	}

	s.RecordAnswerEdit(2, "зем")
	tv = s.Task(q)
	if !tv.CanCheck || tv.Answer != "зем" {
		t.Errorf("edited task view = %+v", tv)
	}

	s.Evaluate(2)
	tv = s.Task(q)
	if tv.Result != model.Correct || !tv.ExplanationVisible {
		t.Errorf("checked task view = %+v", tv)
	}
}

func ptr(s string) *string { return &s }
