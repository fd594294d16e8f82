// Package memory is an in-process quiz.Store. It keeps rows in insertion
// order and enforces the same unique and foreign-key rules as the SQLite
// schema, so it can stand in for it in tests and throwaway deployments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ecat-quiz/internal/quiz"
)

var _ quiz.Store = (*Store)(nil)

type Options struct {
	ForeignKeys bool
}

type questionRow struct {
	ID       string
	QuizID   string
	Text     string
	Position int
}

type answerRow struct {
	ID         string
	QuestionID string
	Text       string
	Correct    bool
	Position   int
}

type tables struct {
	users     []quiz.User
	quizzes   []quiz.QuizSummary
	questions []questionRow
	answers   []answerRow
	results   []quiz.Result
}

func (t *tables) clone() *tables {
	return &tables{
		users:     append([]quiz.User(nil), t.users...),
		quizzes:   append([]quiz.QuizSummary(nil), t.quizzes...),
		questions: append([]questionRow(nil), t.questions...),
		answers:   append([]answerRow(nil), t.answers...),
		results:   append([]quiz.Result(nil), t.results...),
	}
}

// Store guards one set of tables with a mutex. A Tx works on a copy that
// replaces the live tables only when fn succeeds.
type Store struct {
	mu          *sync.Mutex
	data        *tables
	foreignKeys bool
	inTx        bool
}

func New(opts Options) *Store {
	return &Store{
		mu:          &sync.Mutex{},
		data:        &tables{},
		foreignKeys: opts.ForeignKeys,
	}
}

// Initialize exists for parity with the SQLite store; there is no schema.
func (s *Store) Initialize(context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) Tx(ctx context.Context, fn func(quiz.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return storeErr("begin", nil, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scratch := s.data.clone()
	if err := fn(s.scoped(scratch)); err != nil {
		return err
	}
	s.data = scratch
	return nil
}

func (s *Store) View(ctx context.Context, fn func(quiz.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return storeErr("begin", nil, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s.scoped(s.data.clone()))
}

func (s *Store) scoped(data *tables) *Store {
	return &Store{mu: s.mu, data: data, foreignKeys: s.foreignKeys, inTx: true}
}

// statements names the row operation each op performs, in the same shape as
// the SQLite adapter's queries, so errors from both adapters read alike.
var statements = map[string]string{
	"begin":                   "BEGIN",
	"insert user":             "INSERT INTO users (id, email)",
	"find user":               "SELECT users WHERE email = ?",
	"count users":             "SELECT COUNT(*) FROM users",
	"insert quiz":             "INSERT INTO quizzes (id, teacher_id)",
	"find quiz":               "SELECT quizzes WHERE id = ?",
	"list quizzes by teacher": "SELECT quizzes WHERE teacher_id = ?",
	"list published quizzes":  "SELECT quizzes WHERE published = 1",
	"update quiz":             "UPDATE quizzes SET title = ?, published = ? WHERE id = ?",
	"delete quiz":             "DELETE FROM quizzes WHERE id = ?",
	"insert question":         "INSERT INTO questions (id, quiz_id, position)",
	"list questions":          "SELECT questions WHERE quiz_id = ?",
	"delete questions":        "DELETE FROM questions WHERE quiz_id = ?",
	"insert answer":           "INSERT INTO answers (id, question_id, is_correct, position)",
	"list answers":            "SELECT answers WHERE question_id = ?",
	"delete answers":          "DELETE FROM answers WHERE question_id IN (questions of quiz_id = ?)",
	"insert result":           "INSERT INTO results (id, quiz_id, student_id)",
	"list results":            "SELECT results WHERE student_id = ?",
}

func storeErr(op string, args []any, err error) error {
	return &quiz.StoreError{Op: op, Statement: statements[op], Args: args, Err: err}
}

// do runs one statement. Outside a scope it takes the lock itself.
func (s *Store) do(ctx context.Context, op string, args []any, fn func(t *tables) error) error {
	if err := ctx.Err(); err != nil {
		return storeErr(op, args, err)
	}
	if !s.inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	if err := fn(s.data); err != nil {
		return storeErr(op, args, err)
	}
	return nil
}

func constraintf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", quiz.ErrConstraint, fmt.Sprintf(format, args...))
}

func (s *Store) InsertUser(ctx context.Context, user quiz.User) error {
	return s.do(ctx, "insert user", []any{user.ID, user.Email}, func(t *tables) error {
		for _, existing := range t.users {
			if existing.ID == user.ID {
				return constraintf("users.id %q already exists", user.ID)
			}
			if existing.Email == user.Email {
				return constraintf("users.email %q already exists", user.Email)
			}
		}
		t.users = append(t.users, user)
		return nil
	})
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (quiz.User, bool, error) {
	var (
		user  quiz.User
		found bool
	)
	err := s.do(ctx, "find user", []any{email}, func(t *tables) error {
		user, found = t.user(func(u quiz.User) bool { return u.Email == email })
		return nil
	})
	return user, found, err
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := s.do(ctx, "count users", nil, func(t *tables) error {
		count = len(t.users)
		return nil
	})
	return count, err
}

func (s *Store) InsertQuiz(ctx context.Context, q quiz.QuizSummary) error {
	return s.do(ctx, "insert quiz", []any{q.ID, q.TeacherID}, func(t *tables) error {
		if _, ok := t.quiz(q.ID); ok {
			return constraintf("quizzes.id %q already exists", q.ID)
		}
		if s.foreignKeys && !t.hasUser(q.TeacherID) {
			return constraintf("quizzes.teacher_id %q references no user", q.TeacherID)
		}
		q.TeacherName = ""
		t.quizzes = append(t.quizzes, q)
		return nil
	})
}

func (s *Store) FindQuiz(ctx context.Context, quizID string) (quiz.QuizSummary, bool, error) {
	var (
		summary quiz.QuizSummary
		found   bool
	)
	err := s.do(ctx, "find quiz", []any{quizID}, func(t *tables) error {
		var idx int
		idx, found = t.quiz(quizID)
		if found {
			summary = t.quizzes[idx]
		}
		return nil
	})
	return summary, found, err
}

func (s *Store) ListQuizzesByTeacher(ctx context.Context, teacherID string) ([]quiz.QuizSummary, error) {
	quizzes := make([]quiz.QuizSummary, 0)
	err := s.do(ctx, "list quizzes by teacher", []any{teacherID}, func(t *tables) error {
		for _, q := range t.quizzes {
			if q.TeacherID == teacherID {
				quizzes = append(quizzes, q)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (s *Store) ListPublishedQuizzes(ctx context.Context) ([]quiz.QuizSummary, error) {
	quizzes := make([]quiz.QuizSummary, 0)
	err := s.do(ctx, "list published quizzes", nil, func(t *tables) error {
		for _, q := range t.quizzes {
			if !q.Published {
				continue
			}
			if teacher, ok := t.user(func(u quiz.User) bool { return u.ID == q.TeacherID }); ok {
				q.TeacherName = teacher.Name
			}
			quizzes = append(quizzes, q)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (s *Store) UpdateQuizFields(ctx context.Context, quizID, title string, published bool) (bool, error) {
	var matched bool
	err := s.do(ctx, "update quiz", []any{title, published, quizID}, func(t *tables) error {
		idx, ok := t.quiz(quizID)
		if !ok {
			return nil
		}
		t.quizzes[idx].Title = title
		t.quizzes[idx].Published = published
		matched = true
		return nil
	})
	return matched, err
}

func (s *Store) DeleteQuizRow(ctx context.Context, quizID string) error {
	return s.do(ctx, "delete quiz", []any{quizID}, func(t *tables) error {
		idx, ok := t.quiz(quizID)
		if !ok {
			return nil
		}
		if s.foreignKeys {
			for _, q := range t.questions {
				if q.QuizID == quizID {
					return constraintf("questions.quiz_id references quiz %q", quizID)
				}
			}
			for _, r := range t.results {
				if r.QuizID == quizID {
					return constraintf("results.quiz_id references quiz %q", quizID)
				}
			}
		}
		t.quizzes = append(t.quizzes[:idx], t.quizzes[idx+1:]...)
		return nil
	})
}

func (s *Store) InsertQuestion(ctx context.Context, quizID string, position int, question quiz.Question) error {
	return s.do(ctx, "insert question", []any{question.ID, quizID, position}, func(t *tables) error {
		for _, q := range t.questions {
			if q.ID == question.ID {
				return constraintf("questions.id %q already exists", question.ID)
			}
		}
		if _, ok := t.quiz(quizID); s.foreignKeys && !ok {
			return constraintf("questions.quiz_id %q references no quiz", quizID)
		}
		t.questions = append(t.questions, questionRow{
			ID:       question.ID,
			QuizID:   quizID,
			Text:     question.Text,
			Position: position,
		})
		return nil
	})
}

func (s *Store) ListQuestions(ctx context.Context, quizID string) ([]quiz.Question, error) {
	var rows []questionRow
	err := s.do(ctx, "list questions", []any{quizID}, func(t *tables) error {
		for _, q := range t.questions {
			if q.QuizID == quizID {
				rows = append(rows, q)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
	questions := make([]quiz.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, quiz.Question{ID: row.ID, Text: row.Text})
	}
	return questions, nil
}

func (s *Store) DeleteQuestionsByQuiz(ctx context.Context, quizID string) error {
	return s.do(ctx, "delete questions", []any{quizID}, func(t *tables) error {
		kept := make([]questionRow, 0, len(t.questions))
		removed := make(map[string]bool)
		for _, q := range t.questions {
			if q.QuizID == quizID {
				removed[q.ID] = true
				continue
			}
			kept = append(kept, q)
		}
		if s.foreignKeys {
			for _, a := range t.answers {
				if removed[a.QuestionID] {
					return constraintf("answers.question_id references question %q", a.QuestionID)
				}
			}
		}
		t.questions = kept
		return nil
	})
}

func (s *Store) InsertAnswer(ctx context.Context, questionID string, position int, answer quiz.Answer) error {
	return s.do(ctx, "insert answer", []any{answer.ID, questionID, answer.Correct, position}, func(t *tables) error {
		found := false
		for _, a := range t.answers {
			if a.ID == answer.ID {
				return constraintf("answers.id %q already exists", answer.ID)
			}
		}
		for _, q := range t.questions {
			if q.ID == questionID {
				found = true
				break
			}
		}
		if s.foreignKeys && !found {
			return constraintf("answers.question_id %q references no question", questionID)
		}
		t.answers = append(t.answers, answerRow{
			ID:         answer.ID,
			QuestionID: questionID,
			Text:       answer.Text,
			Correct:    answer.Correct,
			Position:   position,
		})
		return nil
	})
}

func (s *Store) ListAnswers(ctx context.Context, questionID string) ([]quiz.Answer, error) {
	var rows []answerRow
	err := s.do(ctx, "list answers", []any{questionID}, func(t *tables) error {
		for _, a := range t.answers {
			if a.QuestionID == questionID {
				rows = append(rows, a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })
	answers := make([]quiz.Answer, 0, len(rows))
	for _, row := range rows {
		answers = append(answers, quiz.Answer{ID: row.ID, Text: row.Text, Correct: row.Correct})
	}
	return answers, nil
}

func (s *Store) DeleteAnswersByQuiz(ctx context.Context, quizID string) error {
	return s.do(ctx, "delete answers", []any{quizID}, func(t *tables) error {
		owned := make(map[string]bool)
		for _, q := range t.questions {
			if q.QuizID == quizID {
				owned[q.ID] = true
			}
		}
		kept := make([]answerRow, 0, len(t.answers))
		for _, a := range t.answers {
			if !owned[a.QuestionID] {
				kept = append(kept, a)
			}
		}
		t.answers = kept
		return nil
	})
}

func (s *Store) InsertResult(ctx context.Context, result quiz.Result) error {
	return s.do(ctx, "insert result", []any{result.ID, result.QuizID, result.StudentID}, func(t *tables) error {
		for _, r := range t.results {
			if r.ID == result.ID {
				return constraintf("results.id %q already exists", result.ID)
			}
		}
		if s.foreignKeys {
			if _, ok := t.quiz(result.QuizID); !ok {
				return constraintf("results.quiz_id %q references no quiz", result.QuizID)
			}
			if !t.hasUser(result.StudentID) {
				return constraintf("results.student_id %q references no user", result.StudentID)
			}
		}
		t.results = append(t.results, result)
		return nil
	})
}

func (s *Store) ListResultsByStudent(ctx context.Context, studentID string) ([]quiz.Result, error) {
	results := make([]quiz.Result, 0)
	err := s.do(ctx, "list results", []any{studentID}, func(t *tables) error {
		for _, r := range t.results {
			if r.StudentID == studentID {
				results = append(results, r)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (t *tables) quiz(id string) (int, bool) {
	for idx, q := range t.quizzes {
		if q.ID == id {
			return idx, true
		}
	}
	return -1, false
}

func (t *tables) user(match func(quiz.User) bool) (quiz.User, bool) {
	for _, u := range t.users {
		if match(u) {
			return u, true
		}
	}
	return quiz.User{}, false
}

func (t *tables) hasUser(id string) bool {
	_, ok := t.user(func(u quiz.User) bool { return u.ID == id })
	return ok
}
