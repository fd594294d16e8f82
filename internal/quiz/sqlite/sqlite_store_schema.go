package sqlite

import (
	"context"

	"ecat-quiz/internal/quiz"
)

// Booleans are INTEGER 0/1 and timestamps are TEXT; see codec.go for the
// conversions. position columns keep authoring order of questions and answers.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS quizzes (
		id TEXT PRIMARY KEY NOT NULL,
		title TEXT NOT NULL,
		teacher_id TEXT NOT NULL,
		published INTEGER NOT NULL DEFAULT 0 CHECK (published IN (0, 1)),
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (teacher_id) REFERENCES users (id)
	);`,
	`CREATE TABLE IF NOT EXISTS questions (
		id TEXT PRIMARY KEY NOT NULL,
		quiz_id TEXT NOT NULL,
		text TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (quiz_id) REFERENCES quizzes (id)
	);`,
	`CREATE TABLE IF NOT EXISTS answers (
		id TEXT PRIMARY KEY NOT NULL,
		question_id TEXT NOT NULL,
		text TEXT NOT NULL,
		correct INTEGER NOT NULL DEFAULT 0 CHECK (correct IN (0, 1)),
		position INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (question_id) REFERENCES questions (id)
	);`,
	`CREATE TABLE IF NOT EXISTS results (
		id TEXT PRIMARY KEY NOT NULL,
		quiz_id TEXT NOT NULL,
		student_id TEXT NOT NULL,
		score INTEGER NOT NULL,
		total_questions INTEGER NOT NULL,
		date TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (quiz_id) REFERENCES quizzes (id),
		FOREIGN KEY (student_id) REFERENCES users (id)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_quizzes_teacher ON quizzes(teacher_id);`,
	`CREATE INDEX IF NOT EXISTS idx_quizzes_published ON quizzes(published);`,
	`CREATE INDEX IF NOT EXISTS idx_questions_quiz ON questions(quiz_id, position);`,
	`CREATE INDEX IF NOT EXISTS idx_answers_question ON answers(question_id, position);`,
	`CREATE INDEX IF NOT EXISTS idx_results_student ON results(student_id);`,
}

// Initialize creates the five tables and their indexes when missing. It is
// safe to call any number of times.
func (s *Store) Initialize(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &quiz.InitializationError{Err: err}
	}
	defer tx.Rollback()

	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return &quiz.InitializationError{Statement: stmt, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &quiz.InitializationError{Err: err}
	}
	return nil
}
