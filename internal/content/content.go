// Package content loads the static question set and subject catalog.
package content

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pavelanni/trainer/internal/model"
)

//go:embed data/default.json
var dataFS embed.FS

var (
	// ErrNoQuestions is returned when a content set has no questions at all.
	ErrNoQuestions = errors.New("content has no questions")

	// ErrDuplicateID is returned when two questions share an ID, including
	// questions coming from different files.
	ErrDuplicateID = errors.New("duplicate question id")

	// ErrInvalidQuestion is returned for a non-positive ID or a blank prompt or answer.
	ErrInvalidQuestion = errors.New("invalid question")
)

// Default returns the built-in sample content.
func Default() (model.ContentFile, error) {
	data, err := dataFS.ReadFile("data/default.json")
	if err != nil {
		return model.ContentFile{}, fmt.Errorf("read default content: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a content JSON document.
func Parse(data []byte) (model.ContentFile, error) {
	var c model.ContentFile
	if err := json.Unmarshal(data, &c); err != nil {
		return model.ContentFile{}, fmt.Errorf("decode content: %w", err)
	}
	if err := Validate(c); err != nil {
		return model.ContentFile{}, err
	}
	return c, nil
}

// LoadFile reads and validates one content file.
func LoadFile(path string) (model.ContentFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ContentFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return model.ContentFile{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Load reads all paths and merges them in order. With no paths it returns
// the built-in content.
func Load(paths []string) (model.ContentFile, error) {
	if len(paths) == 0 {
		return Default()
	}
	var files []model.ContentFile
	for _, p := range paths {
		c, err := LoadFile(p)
		if err != nil {
			return model.ContentFile{}, err
		}
		files = append(files, c)
	}
	return Merge(files...)
}

// Merge concatenates content files and validates the result, so question IDs
// must be unique across all of them.
func Merge(files ...model.ContentFile) (model.ContentFile, error) {
	var out model.ContentFile
	for _, f := range files {
		out.Questions = append(out.Questions, f.Questions...)
		out.Subjects = append(out.Subjects, f.Subjects...)
	}
	if err := Validate(out); err != nil {
		return model.ContentFile{}, err
	}
	return out, nil
}

// Validate checks that the question set is non-empty, IDs are positive and
// unique, and every question has a prompt and an answer.
func Validate(c model.ContentFile) error {
	if len(c.Questions) == 0 {
		return ErrNoQuestions
	}
	seen := make(map[int64]bool, len(c.Questions))
	for i, q := range c.Questions {
		if q.ID <= 0 {
			return fmt.Errorf("%w: question #%d has id %d", ErrInvalidQuestion, i+1, q.ID)
		}
		if seen[q.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateID, q.ID)
		}
		seen[q.ID] = true
		if strings.TrimSpace(q.Prompt) == "" {
			return fmt.Errorf("%w: question %d has empty text", ErrInvalidQuestion, q.ID)
		}
		if strings.TrimSpace(q.Answer) == "" {
			return fmt.Errorf("%w: question %d has empty answer", ErrInvalidQuestion, q.ID)
		}
	}
	return nil
}
