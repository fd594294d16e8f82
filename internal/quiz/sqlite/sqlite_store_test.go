package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ecat-quiz/internal/quiz"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	store, err := Open(context.Background(), Options{Path: path, ForeignKeys: true})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
		_ = os.Remove(path)
		_ = os.Remove(path + "-journal")
	})
	return store
}

func insertTeacher(t *testing.T, store *Store) quiz.User {
	t.Helper()

	teacher := quiz.User{
		ID:       "teacher-1",
		Name:     "Ms. Frizzle",
		Email:    "frizzle@example.com",
		Password: "hash",
		Role:     quiz.RoleTeacher,
	}
	if err := store.InsertUser(context.Background(), teacher); err != nil {
		t.Fatalf("InsertUser failed: %v", err)
	}
	return teacher
}

func TestInitializeIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.Initialize(ctx); err != nil {
			t.Fatalf("Initialize call %d failed: %v", i+1, err)
		}
	}

	var tables int
	err := store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'quizzes', 'questions', 'answers', 'results')`,
	).Scan(&tables)
	if err != nil {
		t.Fatalf("count tables failed: %v", err)
	}
	if tables != 5 {
		t.Fatalf("expected 5 tables, got %d", tables)
	}
}

func TestOpenReportsInitializationError(t *testing.T) {
	dir := t.TempDir()
	// A directory cannot be opened as a database file.
	_, err := Open(context.Background(), Options{Path: dir})

	var initErr *quiz.InitializationError
	if !errors.As(err, &initErr) {
		t.Fatalf("expected *quiz.InitializationError, got %v", err)
	}
}

func TestUserRoundTripAndCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	teacher := insertTeacher(t, store)

	got, found, err := store.FindUserByEmail(ctx, teacher.Email)
	if err != nil {
		t.Fatalf("FindUserByEmail failed: %v", err)
	}
	if !found || got != teacher {
		t.Fatalf("unexpected user: found=%v %+v", found, got)
	}

	_, found, err = store.FindUserByEmail(ctx, "nobody@example.com")
	if err != nil || found {
		t.Fatalf("expected missing user without error, found=%v err=%v", found, err)
	}

	count, err := store.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 user, got %d", count)
	}
}

func TestDuplicateEmailIsConstraintError(t *testing.T) {
	store := newTestStore(t)
	teacher := insertTeacher(t, store)

	teacher.ID = "teacher-2"
	err := store.InsertUser(context.Background(), teacher)
	if !errors.Is(err, quiz.ErrConstraint) {
		t.Fatalf("expected ErrConstraint, got %v", err)
	}

	var storeErr *quiz.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected *quiz.StoreError, got %T", err)
	}
	if storeErr.Statement != insertUserStmt || len(storeErr.Args) != 5 {
		t.Fatalf("store error does not carry the statement: %+v", storeErr)
	}
}

func TestBooleansAreStoredAsIntegers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	insertTeacher(t, store)

	if err := store.InsertQuiz(ctx, quiz.QuizSummary{ID: "quiz-1", Title: "T", TeacherID: "teacher-1", Published: true, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("InsertQuiz failed: %v", err)
	}
	if err := store.InsertQuestion(ctx, "quiz-1", 0, quiz.Question{ID: "q1", Text: "?"}); err != nil {
		t.Fatalf("InsertQuestion failed: %v", err)
	}
	if err := store.InsertAnswer(ctx, "q1", 0, quiz.Answer{ID: "a1", Text: "yes", Correct: true}); err != nil {
		t.Fatalf("InsertAnswer failed: %v", err)
	}
	if err := store.InsertAnswer(ctx, "q1", 1, quiz.Answer{ID: "a2", Text: "no"}); err != nil {
		t.Fatalf("InsertAnswer failed: %v", err)
	}

	var published int64
	if err := store.db.QueryRowContext(ctx, `SELECT published FROM quizzes WHERE id = ?`, "quiz-1").Scan(&published); err != nil {
		t.Fatalf("raw select failed: %v", err)
	}
	if published != 1 {
		t.Fatalf("expected published stored as 1, got %d", published)
	}

	var correct, wrong int64
	if err := store.db.QueryRowContext(ctx, `SELECT correct FROM answers WHERE id = ?`, "a1").Scan(&correct); err != nil {
		t.Fatalf("raw select failed: %v", err)
	}
	if err := store.db.QueryRowContext(ctx, `SELECT correct FROM answers WHERE id = ?`, "a2").Scan(&wrong); err != nil {
		t.Fatalf("raw select failed: %v", err)
	}
	if correct != 1 || wrong != 0 {
		t.Fatalf("expected correct stored as 1/0, got %d/%d", correct, wrong)
	}

	answers, err := store.ListAnswers(ctx, "q1")
	if err != nil {
		t.Fatalf("ListAnswers failed: %v", err)
	}
	if len(answers) != 2 || !answers[0].Correct || answers[1].Correct {
		t.Fatalf("booleans not decoded: %+v", answers)
	}
}

func TestPublishedListingCarriesTeacherName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	teacher := insertTeacher(t, store)

	for _, q := range []quiz.QuizSummary{
		{ID: "draft", Title: "Draft", TeacherID: teacher.ID, CreatedAt: time.Now()},
		{ID: "live", Title: "Live", TeacherID: teacher.ID, Published: true, CreatedAt: time.Now()},
	} {
		if err := store.InsertQuiz(ctx, q); err != nil {
			t.Fatalf("InsertQuiz %s failed: %v", q.ID, err)
		}
	}

	published, err := store.ListPublishedQuizzes(ctx)
	if err != nil {
		t.Fatalf("ListPublishedQuizzes failed: %v", err)
	}
	if len(published) != 1 || published[0].ID != "live" || published[0].TeacherName != teacher.Name {
		t.Fatalf("unexpected published listing: %+v", published)
	}

	byTeacher, err := store.ListQuizzesByTeacher(ctx, teacher.ID)
	if err != nil {
		t.Fatalf("ListQuizzesByTeacher failed: %v", err)
	}
	if len(byTeacher) != 2 || byTeacher[0].ID != "draft" || byTeacher[1].ID != "live" {
		t.Fatalf("unexpected teacher listing: %+v", byTeacher)
	}
}

func TestTimestampsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	insertTeacher(t, store)

	createdAt := time.Unix(1700000000, 123456789).In(time.FixedZone("X", 3600))
	if err := store.InsertQuiz(ctx, quiz.QuizSummary{ID: "quiz-1", Title: "T", TeacherID: "teacher-1", CreatedAt: createdAt}); err != nil {
		t.Fatalf("InsertQuiz failed: %v", err)
	}

	got, found, err := store.FindQuiz(ctx, "quiz-1")
	if err != nil || !found {
		t.Fatalf("FindQuiz failed: found=%v err=%v", found, err)
	}
	if !got.CreatedAt.Equal(createdAt) {
		t.Fatalf("created_at changed: got %v want %v", got.CreatedAt, createdAt)
	}
}

func TestDefaultTimestampIsDecoded(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	insertTeacher(t, store)

	if _, err := store.db.ExecContext(ctx, `INSERT INTO quizzes (id, title, teacher_id) VALUES ('quiz-1', 'T', 'teacher-1')`); err != nil {
		t.Fatalf("raw insert failed: %v", err)
	}

	got, found, err := store.FindQuiz(ctx, "quiz-1")
	if err != nil || !found {
		t.Fatalf("FindQuiz failed: found=%v err=%v", found, err)
	}
	if got.CreatedAt.IsZero() || got.Published {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestForeignKeyViolationInsideTxRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	insertTeacher(t, store)

	err := store.Tx(ctx, func(tx quiz.Store) error {
		if err := tx.InsertQuiz(ctx, quiz.QuizSummary{ID: "quiz-1", Title: "T", TeacherID: "teacher-1", CreatedAt: time.Now()}); err != nil {
			return err
		}
		return tx.InsertAnswer(ctx, "no-such-question", 0, quiz.Answer{ID: "a1", Text: "x"})
	})
	if !errors.Is(err, quiz.ErrConstraint) {
		t.Fatalf("expected ErrConstraint, got %v", err)
	}

	if _, found, _ := store.FindQuiz(ctx, "quiz-1"); found {
		t.Fatalf("quiz row must be rolled back")
	}
}

func TestUpdateQuizFieldsReportsMatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	insertTeacher(t, store)

	if err := store.InsertQuiz(ctx, quiz.QuizSummary{ID: "quiz-1", Title: "T", TeacherID: "teacher-1", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("InsertQuiz failed: %v", err)
	}

	matched, err := store.UpdateQuizFields(ctx, "quiz-1", "T", false)
	if err != nil || !matched {
		t.Fatalf("expected unchanged row to still match, matched=%v err=%v", matched, err)
	}
	matched, err = store.UpdateQuizFields(ctx, "missing", "T", true)
	if err != nil || matched {
		t.Fatalf("expected no match for missing quiz, matched=%v err=%v", matched, err)
	}
}

func TestDataSourceName(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "defaults",
			opts: Options{},
			want: "ecat_quiz.db?_foreign_keys=0&_busy_timeout=5000",
		},
		{
			name: "existing query",
			opts: Options{Path: "file:x.db?cache=shared", ForeignKeys: true, BusyTimeout: time.Second},
			want: "file:x.db?cache=shared&_foreign_keys=1&_busy_timeout=1000",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := dataSourceName(tc.opts); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}
