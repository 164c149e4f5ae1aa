package store

import (
	"database/sql"
	"fmt"

	"github.com/pavelanni/trainer/internal/model"

	_ "modernc.org/sqlite"
)

// Store keeps the question set and subject catalog in SQLite.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	// :memory: databases are per-connection.
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY,
		prompt TEXT NOT NULL,
		answer TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		topic TEXT NOT NULL DEFAULT '',
		explanation TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS subjects (
		name TEXT PRIMARY KEY,
		icon TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		image TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		tasks_count INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS imported_files (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		imported_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ReplaceContent swaps the stored question set and subject catalog for c in
// one transaction. Rows absent from c are removed, so the store always holds
// exactly the last imported set.
func (s *Store) ReplaceContent(c model.ContentFile) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM questions`); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM subjects`); err != nil {
		return fmt.Errorf("clear subjects: %w", err)
	}

	for i, q := range c.Questions {
		_, err := tx.Exec(
			`INSERT INTO questions (id, prompt, answer, subject, topic, explanation, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			q.ID, q.Prompt, q.Answer, q.Subject, q.Topic, q.Explanation, i+1,
		)
		if err != nil {
			return fmt.Errorf("insert question %d: %w", q.ID, err)
		}
	}

	for i, sub := range c.Subjects {
		// Later files may describe the same subject again; the last one wins.
		_, err := tx.Exec(
			`INSERT INTO subjects (name, icon, color, image, description, tasks_count, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET icon = excluded.icon, color = excluded.color,
			 image = excluded.image, description = excluded.description, tasks_count = excluded.tasks_count`,
			sub.Name, sub.Icon, sub.Color, sub.Image, sub.Description, sub.TaskCount, i+1,
		)
		if err != nil {
			return fmt.Errorf("insert subject %q: %w", sub.Name, err)
		}
	}

	return tx.Commit()
}

// ListQuestions returns all questions in import order.
func (s *Store) ListQuestions() ([]model.Question, error) {
	rows, err := s.db.Query(`SELECT id, prompt, answer, subject, topic, explanation FROM questions ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Prompt, &q.Answer, &q.Subject, &q.Topic, &q.Explanation); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetQuestion returns a question by ID.
func (s *Store) GetQuestion(id int64) (model.Question, error) {
	var q model.Question
	err := s.db.QueryRow(
		`SELECT id, prompt, answer, subject, topic, explanation FROM questions WHERE id = ?`, id,
	).Scan(&q.ID, &q.Prompt, &q.Answer, &q.Subject, &q.Topic, &q.Explanation)
	return q, err
}

// ListSubjects returns the subject catalog in import order.
func (s *Store) ListSubjects() ([]model.Subject, error) {
	rows, err := s.db.Query(`SELECT name, icon, color, image, description, tasks_count FROM subjects ORDER BY position, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var subjects []model.Subject
	for rows.Next() {
		var sub model.Subject
		if err := rows.Scan(&sub.Name, &sub.Icon, &sub.Color, &sub.Image, &sub.Description, &sub.TaskCount); err != nil {
			return nil, err
		}
		subjects = append(subjects, sub)
	}
	return subjects, rows.Err()
}

// Content returns the full question set and subject catalog.
func (s *Store) Content() (model.ContentFile, error) {
	questions, err := s.ListQuestions()
	if err != nil {
		return model.ContentFile{}, fmt.Errorf("list questions: %w", err)
	}
	subjects, err := s.ListSubjects()
	if err != nil {
		return model.ContentFile{}, fmt.Errorf("list subjects: %w", err)
	}
	return model.ContentFile{Questions: questions, Subjects: subjects}, nil
}

// QuestionCount returns the number of questions in the database.
func (s *Store) QuestionCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM questions`).Scan(&count)
	return count, err
}
