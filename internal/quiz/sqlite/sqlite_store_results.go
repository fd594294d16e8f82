package sqlite

import (
	"context"

	"ecat-quiz/internal/quiz"
)

const (
	insertResultStmt = `INSERT INTO results (id, quiz_id, student_id, score, total_questions, date)
		VALUES (?, ?, ?, ?, ?, ?)`
	listResultsByStudentStmt = `SELECT id, quiz_id, student_id, score, total_questions, date
		FROM results
		WHERE student_id = ?
		ORDER BY rowid ASC`
)

// InsertResult appends a result row. Results are never updated or deleted.
func (s *Store) InsertResult(ctx context.Context, result quiz.Result) error {
	_, err := s.exec(ctx, "insert result", insertResultStmt,
		result.ID,
		result.QuizID,
		result.StudentID,
		result.Score,
		result.TotalQuestions,
		encodeTime(result.Date),
	)
	return err
}

func (s *Store) ListResultsByStudent(ctx context.Context, studentID string) ([]quiz.Result, error) {
	rows, err := s.q.QueryContext(ctx, listResultsByStudentStmt, studentID)
	if err != nil {
		return nil, storeErr("list results", listResultsByStudentStmt, []any{studentID}, err)
	}
	defer rows.Close()

	results := make([]quiz.Result, 0)
	for rows.Next() {
		var row resultRow
		if err := rows.Scan(&row.ID, &row.QuizID, &row.StudentID, &row.Score, &row.TotalQuestions, &row.Date); err != nil {
			return nil, storeErr("list results", listResultsByStudentStmt, []any{studentID}, err)
		}

		result, err := row.decode()
		if err != nil {
			return nil, storeErr("list results", listResultsByStudentStmt, []any{studentID}, err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list results", listResultsByStudentStmt, []any{studentID}, err)
	}

	return results, nil
}
