package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"ecat-quiz/internal/quiz"
)

const (
	insertQuizStmt = `INSERT INTO quizzes (id, title, teacher_id, published, created_at) VALUES (?, ?, ?, ?, ?)`
	findQuizStmt   = `SELECT id, title, teacher_id, published, created_at FROM quizzes WHERE id = ?`

	listQuizzesByTeacherStmt = `SELECT id, title, teacher_id, published, created_at
		FROM quizzes
		WHERE teacher_id = ?
		ORDER BY rowid ASC`

	// The join only decorates rows with the author name; LEFT keeps quizzes
	// whose teacher row is missing when foreign keys are not enforced.
	listPublishedQuizzesStmt = `SELECT q.id, q.title, q.teacher_id, u.name, q.published, q.created_at
		FROM quizzes q
		LEFT JOIN users u ON u.id = q.teacher_id
		WHERE q.published = ?
		ORDER BY q.rowid ASC`

	updateQuizFieldsStmt = `UPDATE quizzes SET title = ?, published = ? WHERE id = ?`
	deleteQuizStmt       = `DELETE FROM quizzes WHERE id = ?`

	insertQuestionStmt        = `INSERT INTO questions (id, quiz_id, text, position) VALUES (?, ?, ?, ?)`
	listQuestionsStmt         = `SELECT id, text FROM questions WHERE quiz_id = ? ORDER BY position ASC, rowid ASC`
	deleteQuestionsByQuizStmt = `DELETE FROM questions WHERE quiz_id = ?`

	insertAnswerStmt        = `INSERT INTO answers (id, question_id, text, correct, position) VALUES (?, ?, ?, ?, ?)`
	listAnswersStmt         = `SELECT id, text, correct FROM answers WHERE question_id = ? ORDER BY position ASC, rowid ASC`
	deleteAnswersByQuizStmt = `DELETE FROM answers WHERE question_id IN (SELECT id FROM questions WHERE quiz_id = ?)`
)

func (s *Store) InsertQuiz(ctx context.Context, q quiz.QuizSummary) error {
	_, err := s.exec(ctx, "insert quiz", insertQuizStmt,
		q.ID,
		q.Title,
		q.TeacherID,
		encodeBool(q.Published),
		encodeTime(q.CreatedAt),
	)
	return err
}

func (s *Store) FindQuiz(ctx context.Context, quizID string) (quiz.QuizSummary, bool, error) {
	var row quizRow
	err := s.q.QueryRowContext(ctx, findQuizStmt, quizID).
		Scan(&row.ID, &row.Title, &row.TeacherID, &row.Published, &row.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quiz.QuizSummary{}, false, nil
		}
		return quiz.QuizSummary{}, false, storeErr("find quiz", findQuizStmt, []any{quizID}, err)
	}

	summary, err := row.decode()
	if err != nil {
		return quiz.QuizSummary{}, false, storeErr("find quiz", findQuizStmt, []any{quizID}, err)
	}
	return summary, true, nil
}

func (s *Store) ListQuizzesByTeacher(ctx context.Context, teacherID string) ([]quiz.QuizSummary, error) {
	return s.listQuizzes(ctx, "list quizzes by teacher", listQuizzesByTeacherStmt, false, teacherID)
}

func (s *Store) ListPublishedQuizzes(ctx context.Context) ([]quiz.QuizSummary, error) {
	return s.listQuizzes(ctx, "list published quizzes", listPublishedQuizzesStmt, true, encodeBool(true))
}

func (s *Store) listQuizzes(ctx context.Context, op, stmt string, withTeacherName bool, args ...any) ([]quiz.QuizSummary, error) {
	rows, err := s.q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, storeErr(op, stmt, args, err)
	}
	defer rows.Close()

	quizzes := make([]quiz.QuizSummary, 0)
	for rows.Next() {
		var row quizRow
		dest := []any{&row.ID, &row.Title, &row.TeacherID, &row.Published, &row.CreatedAt}
		if withTeacherName {
			dest = []any{&row.ID, &row.Title, &row.TeacherID, &row.TeacherName, &row.Published, &row.CreatedAt}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, storeErr(op, stmt, args, err)
		}

		summary, err := row.decode()
		if err != nil {
			return nil, storeErr(op, stmt, args, err)
		}
		quizzes = append(quizzes, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, stmt, args, err)
	}

	return quizzes, nil
}

func (s *Store) UpdateQuizFields(ctx context.Context, quizID, title string, published bool) (bool, error) {
	args := []any{title, encodeBool(published), quizID}
	res, err := s.exec(ctx, "update quiz", updateQuizFieldsStmt, args...)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("update quiz", updateQuizFieldsStmt, args, err)
	}
	return affected > 0, nil
}

func (s *Store) DeleteQuizRow(ctx context.Context, quizID string) error {
	_, err := s.exec(ctx, "delete quiz", deleteQuizStmt, quizID)
	return err
}

func (s *Store) InsertQuestion(ctx context.Context, quizID string, position int, question quiz.Question) error {
	_, err := s.exec(ctx, "insert question", insertQuestionStmt, question.ID, quizID, question.Text, position)
	return err
}

func (s *Store) ListQuestions(ctx context.Context, quizID string) ([]quiz.Question, error) {
	rows, err := s.q.QueryContext(ctx, listQuestionsStmt, quizID)
	if err != nil {
		return nil, storeErr("list questions", listQuestionsStmt, []any{quizID}, err)
	}
	defer rows.Close()

	questions := make([]quiz.Question, 0)
	for rows.Next() {
		var question quiz.Question
		if err := rows.Scan(&question.ID, &question.Text); err != nil {
			return nil, storeErr("list questions", listQuestionsStmt, []any{quizID}, err)
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list questions", listQuestionsStmt, []any{quizID}, err)
	}

	return questions, nil
}

func (s *Store) DeleteQuestionsByQuiz(ctx context.Context, quizID string) error {
	_, err := s.exec(ctx, "delete questions", deleteQuestionsByQuizStmt, quizID)
	return err
}

func (s *Store) InsertAnswer(ctx context.Context, questionID string, position int, answer quiz.Answer) error {
	_, err := s.exec(ctx, "insert answer", insertAnswerStmt,
		answer.ID,
		questionID,
		answer.Text,
		encodeBool(answer.Correct),
		position,
	)
	return err
}

func (s *Store) ListAnswers(ctx context.Context, questionID string) ([]quiz.Answer, error) {
	rows, err := s.q.QueryContext(ctx, listAnswersStmt, questionID)
	if err != nil {
		return nil, storeErr("list answers", listAnswersStmt, []any{questionID}, err)
	}
	defer rows.Close()

	answers := make([]quiz.Answer, 0)
	for rows.Next() {
		var row answerRow
		if err := rows.Scan(&row.ID, &row.Text, &row.Correct); err != nil {
			return nil, storeErr("list answers", listAnswersStmt, []any{questionID}, err)
		}
		answers = append(answers, row.decode())
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list answers", listAnswersStmt, []any{questionID}, err)
	}

	return answers, nil
}

func (s *Store) DeleteAnswersByQuiz(ctx context.Context, quizID string) error {
	_, err := s.exec(ctx, "delete answers", deleteAnswersByQuizStmt, quizID)
	return err
}
