package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pavelanni/trainer/internal/model"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(c.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(c.Questions))
	}
	if len(c.Subjects) != 3 {
		t.Fatalf("expected 3 subjects, got %d", len(c.Subjects))
	}
	if c.Questions[1].Answer != "зем" {
		t.Errorf("question 2 answer = %q, want 'зем'", c.Questions[1].Answer)
	}
	if c.Subjects[0].TaskCount != 245 {
		t.Errorf("subject 1 task count = %d, want 245", c.Subjects[0].TaskCount)
	}
}

func TestValidate(t *testing.T) {
	good := model.Question{ID: 1, Prompt: "2+2?", Answer: "4"}
	tests := []struct {
		name    string
		content model.ContentFile
		wantErr error
	}{
		{"ok", model.ContentFile{Questions: []model.Question{good}}, nil},
		{"empty", model.ContentFile{}, ErrNoQuestions},
		{"zero id", model.ContentFile{Questions: []model.Question{{ID: 0, Prompt: "q", Answer: "a"}}}, ErrInvalidQuestion},
		{"duplicate id", model.ContentFile{Questions: []model.Question{good, good}}, ErrDuplicateID},
		{"blank prompt", model.ContentFile{Questions: []model.Question{{ID: 2, Prompt: "  ", Answer: "a"}}}, ErrInvalidQuestion},
		{"blank answer", model.ContentFile{Questions: []model.Question{{ID: 2, Prompt: "q", Answer: ""}}}, ErrInvalidQuestion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.content)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadFiles(t *testing.T) {
	a := writeFile(t, "a.json", `{"questions":[{"id":1,"question":"Q1","answer":"A1"}],
		"subjects":[{"name":"Химия","tasks_count":10}]}`)
	b := writeFile(t, "b.json", `{"questions":[{"id":2,"question":"Q2","answer":"A2","explanation":"E2"}]}`)

	c, err := Load([]string{a, b})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(c.Questions))
	}
	if c.Questions[1].Explanation != "E2" {
		t.Errorf("explanation = %q, want 'E2'", c.Questions[1].Explanation)
	}
	if len(c.Subjects) != 1 || c.Subjects[0].Name != "Химия" {
		t.Errorf("subjects = %+v", c.Subjects)
	}
}

func TestLoadDuplicateAcrossFiles(t *testing.T) {
	a := writeFile(t, "a.json", `{"questions":[{"id":1,"question":"Q1","answer":"A1"}]}`)
	b := writeFile(t, "b.json", `{"questions":[{"id":1,"question":"Q2","answer":"A2"}]}`)

	_, err := Load([]string{a, b})
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
}

func TestLoadNoPathsUsesDefault(t *testing.T) {
	c, err := Load(nil)
	if err != nil {
		t.Fatalf("Load(nil): %v", err)
	}
	if len(c.Questions) != 3 {
		t.Errorf("expected default content, got %d questions", len(c.Questions))
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := writeFile(t, "bad.json", `{"questions": [`)
	if _, err := LoadFile(bad); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
