package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"ecat-quiz/internal/quiz"
)

// Rows written by the CURRENT_TIMESTAMP column default use the SQLite layout.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
}

func encodeBool(v bool) int {
	if v {
		return 1
	}
	return 0
}

func decodeBool(v int64) bool {
	return v != 0
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func decodeTime(v string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", v)
}

type quizRow struct {
	ID          string
	Title       string
	TeacherID   string
	TeacherName sql.NullString
	Published   int64
	CreatedAt   string
}

func (r quizRow) decode() (quiz.QuizSummary, error) {
	createdAt, err := decodeTime(r.CreatedAt)
	if err != nil {
		return quiz.QuizSummary{}, err
	}
	return quiz.QuizSummary{
		ID:          r.ID,
		Title:       r.Title,
		TeacherID:   r.TeacherID,
		TeacherName: r.TeacherName.String,
		Published:   decodeBool(r.Published),
		CreatedAt:   createdAt,
	}, nil
}

type answerRow struct {
	ID      string
	Text    string
	Correct int64
}

func (r answerRow) decode() quiz.Answer {
	return quiz.Answer{
		ID:      r.ID,
		Text:    r.Text,
		Correct: decodeBool(r.Correct),
	}
}

type resultRow struct {
	ID             string
	QuizID         string
	StudentID      string
	Score          int
	TotalQuestions int
	Date           string
}

func (r resultRow) decode() (quiz.Result, error) {
	date, err := decodeTime(r.Date)
	if err != nil {
		return quiz.Result{}, err
	}
	return quiz.Result{
		ID:             r.ID,
		QuizID:         r.QuizID,
		StudentID:      r.StudentID,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		Date:           date,
	}, nil
}
