package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"ecat-quiz/internal/opentdb"
	"ecat-quiz/internal/quiz"
	"ecat-quiz/internal/quiz/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, opts ...quiz.Option) *gin.Engine {
	t.Helper()
	store := memory.New(memory.Options{ForeignKeys: true})
	opts = append([]quiz.Option{quiz.WithPasswordCost(bcrypt.MinCost)}, opts...)
	return NewRouter(quiz.NewService(store, opts...), RouterOptions{})
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func signup(t *testing.T, router http.Handler, email string, role quiz.Role) quiz.User {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/users", signupRequest{Name: email, Email: email, Password: "secret", Role: role})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup %s status = %d body=%s", email, rec.Code, rec.Body.String())
	}
	return decode[quiz.User](t, rec)
}

func algebraRequest(teacherID string, published bool) quizRequest {
	return quizRequest{
		Title:     "Algebra",
		TeacherID: teacherID,
		Published: published,
		Questions: []quiz.Question{
			{Text: "2+2?", Answers: []quiz.Answer{{Text: "3"}, {Text: "4", Correct: true}}},
		},
	}
}

func TestUserEndpoints(t *testing.T) {
	router := newTestRouter(t)

	user := signup(t, router, "teacher@example.com", quiz.RoleTeacher)
	if user.ID == "" || user.Password != "" {
		t.Fatalf("unexpected signup response: %+v", user)
	}

	rec := do(t, router, http.MethodPost, "/api/users", signupRequest{Email: "teacher@example.com", Password: "x", Role: quiz.RoleStudent})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup status = %d, want 409", rec.Code)
	}
	rec = do(t, router, http.MethodPost, "/api/users", signupRequest{Email: "x@example.com", Password: "x", Role: "admin"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad role status = %d, want 400", rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/api/users?email=TEACHER@example.com", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get user status = %d body=%s", rec.Code, rec.Body.String())
	}
	if got := decode[quiz.User](t, rec); got.ID != user.ID || got.Password != "" {
		t.Fatalf("unexpected user lookup: %+v", got)
	}
	if rec := do(t, router, http.MethodGet, "/api/users?email=none@example.com", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing user status = %d, want 404", rec.Code)
	}

	rec = do(t, router, http.MethodPost, "/api/sessions", sessionRequest{Email: "teacher@example.com", Password: "secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d body=%s", rec.Code, rec.Body.String())
	}
	rec = do(t, router, http.MethodPost, "/api/sessions", sessionRequest{Email: "teacher@example.com", Password: "nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", rec.Code)
	}
}

func TestQuizLifecycleEndpoints(t *testing.T) {
	router := newTestRouter(t)
	teacher := signup(t, router, "teacher@example.com", quiz.RoleTeacher)
	student := signup(t, router, "student@example.com", quiz.RoleStudent)

	rec := do(t, router, http.MethodPost, "/api/quizzes", algebraRequest(teacher.ID, false))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rec.Code, rec.Body.String())
	}
	created := decode[quiz.Quiz](t, rec)

	rec = do(t, router, http.MethodGet, "/api/quizzes?published=true", nil)
	if got := decode[publishedQuizzesResponse](t, rec); len(got.Quizzes) != 0 {
		t.Fatalf("draft must not be listed as published: %+v", got.Quizzes)
	}

	publish := algebraRequest(teacher.ID, true)
	rec = do(t, router, http.MethodPut, "/api/quizzes/"+created.ID, publish)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d body=%s", rec.Code, rec.Body.String())
	}
	updated := decode[quiz.Quiz](t, rec)
	if updated.Questions[0].ID == created.Questions[0].ID {
		t.Fatalf("question ids must change on update")
	}

	rec = do(t, router, http.MethodGet, "/api/quizzes?published=true", nil)
	published := decode[publishedQuizzesResponse](t, rec)
	if len(published.Quizzes) != 1 || published.Quizzes[0].TeacherName != teacher.Name {
		t.Fatalf("unexpected published listing: %+v", published.Quizzes)
	}

	rec = do(t, router, http.MethodGet, "/api/quizzes?teacher_id="+teacher.ID, nil)
	if got := decode[teacherQuizzesResponse](t, rec); len(got.Quizzes) != 1 || got.Quizzes[0].ID != created.ID {
		t.Fatalf("unexpected teacher listing: %+v", got.Quizzes)
	}
	rec = do(t, router, http.MethodGet, "/api/quizzes", nil)
	if !strings.Contains(rec.Body.String(), `"quizzes":[]`) {
		t.Fatalf("expected empty list without filter, got %s", rec.Body.String())
	}

	question := updated.Questions[0]
	rec = do(t, router, http.MethodPost, "/api/quizzes/"+created.ID+"/attempts", attemptRequest{
		StudentID: student.ID,
		Responses: []quiz.SubmittedResponse{{QuestionID: question.ID, AnswerID: question.Answers[1].ID}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("attempt status = %d body=%s", rec.Code, rec.Body.String())
	}
	if attempt := decode[quiz.Attempt](t, rec); attempt.Result.Score != 1 || attempt.Result.TotalQuestions != 1 {
		t.Fatalf("unexpected attempt: %+v", attempt)
	}

	rec = do(t, router, http.MethodGet, "/api/students/"+student.ID+"/results", nil)
	if got := decode[resultsResponse](t, rec); len(got.Results) != 1 {
		t.Fatalf("expected one result, got %+v", got.Results)
	}

	rec = do(t, router, http.MethodDelete, "/api/quizzes/"+created.ID, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete of a quiz with results status = %d, want 409", rec.Code)
	}

	rec = do(t, router, http.MethodPost, "/api/quizzes", algebraRequest(teacher.ID, false))
	other := decode[quiz.Quiz](t, rec)
	if rec := do(t, router, http.MethodDelete, "/api/quizzes/"+other.ID, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/api/quizzes/"+other.ID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestQuizValidationAndNotFound(t *testing.T) {
	router := newTestRouter(t)
	teacher := signup(t, router, "teacher@example.com", quiz.RoleTeacher)

	invalid := algebraRequest(teacher.ID, false)
	invalid.Questions[0].Answers[0].Correct = true
	rec := do(t, router, http.MethodPost, "/api/quizzes", invalid)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid quiz status = %d, want 400", rec.Code)
	}
	if got := decode[errorResponse](t, rec); len(got.Problems) != 1 {
		t.Fatalf("expected one problem, got %+v", got)
	}

	if rec := do(t, router, http.MethodPost, "/api/quizzes", algebraRequest("", false)); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing teacher status = %d, want 400", rec.Code)
	}
	if rec := do(t, router, http.MethodPost, "/api/quizzes", algebraRequest("ghost", false)); rec.Code != http.StatusConflict {
		t.Fatalf("unknown teacher status = %d, want 409", rec.Code)
	}
	if rec := do(t, router, http.MethodPut, "/api/quizzes/missing", algebraRequest(teacher.ID, true)); rec.Code != http.StatusNotFound {
		t.Fatalf("update missing status = %d, want 404", rec.Code)
	}
	if rec := do(t, router, http.MethodPost, "/api/quizzes/missing/attempts", attemptRequest{StudentID: "s", Responses: []quiz.SubmittedResponse{}}); rec.Code != http.StatusNotFound {
		t.Fatalf("attempt on missing quiz status = %d, want 404", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/quizzes", strings.NewReader("{"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed JSON status = %d, want 400", rec.Code)
	}
}

func TestImportEndpoint(t *testing.T) {
	router := newTestRouter(t)
	if rec := do(t, router, http.MethodPost, "/api/quizzes/import", importRequest{TeacherID: "t"}); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("import without fetcher status = %d, want 503", rec.Code)
	}

	var requested opentdb.Query
	router = newTestRouter(t, quiz.WithFetcher(func(_ context.Context, query opentdb.Query) ([]opentdb.RawQuestion, error) {
		requested = query
		if query.Amount == 3 {
			return nil, errors.New("upstream down")
		}
		return []opentdb.RawQuestion{{Question: "Q", CorrectAnswer: "A", IncorrectAnswers: []string{"B"}}}, nil
	}))
	teacher := signup(t, router, "teacher@example.com", quiz.RoleTeacher)

	rec := do(t, router, http.MethodPost, "/api/quizzes/import", importRequest{TeacherID: teacher.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("import status = %d body=%s", rec.Code, rec.Body.String())
	}
	if requested.Amount != defaultImportAmount {
		t.Fatalf("expected default amount %d, got %d", defaultImportAmount, requested.Amount)
	}
	if got := decode[quiz.Quiz](t, rec); got.Published || len(got.Questions) != 1 {
		t.Fatalf("unexpected imported quiz: %+v", got)
	}

	if rec := do(t, router, http.MethodPost, "/api/quizzes/import", importRequest{TeacherID: teacher.ID, Amount: 3}); rec.Code != http.StatusBadGateway {
		t.Fatalf("failed fetch status = %d, want 502", rec.Code)
	}

	rec = do(t, router, http.MethodPost, "/api/quizzes/import", importRequest{TeacherID: teacher.ID, Amount: 4, Category: 18, Difficulty: " medium "})
	if rec.Code != http.StatusCreated {
		t.Fatalf("filtered import status = %d body=%s", rec.Code, rec.Body.String())
	}
	if requested.Category != 18 || requested.Difficulty != "medium" {
		t.Fatalf("filters not forwarded: %+v", requested)
	}
	if rec := do(t, router, http.MethodPost, "/api/quizzes/import", importRequest{TeacherID: teacher.ID, Difficulty: "impossible"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown difficulty status = %d, want 400", rec.Code)
	}
}

func TestAddResultEndpoint(t *testing.T) {
	router := newTestRouter(t)

	if rec := do(t, router, http.MethodPost, "/api/results", resultRequest{QuizID: "q"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing student status = %d, want 400", rec.Code)
	}
	if rec := do(t, router, http.MethodPost, "/api/results", resultRequest{QuizID: "q", StudentID: "s", Score: 1, TotalQuestions: 1}); rec.Code != http.StatusConflict {
		t.Fatalf("dangling result status = %d, want 409", rec.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	if rec := do(t, router, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}

	rec := do(t, router, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `http_requests_total{endpoint="/healthz",method="GET",status="200"} 1`) {
		t.Fatalf("expected healthz request counted, got:\n%s", rec.Body.String())
	}
}

func TestRateLimiter(t *testing.T) {
	store := memory.New(memory.Options{})
	router := NewRouter(quiz.NewService(store), RouterOptions{RateLimit: 2, RateWindow: time.Hour})

	for i := 0; i < 2; i++ {
		if rec := do(t, router, http.MethodGet, "/api/quizzes", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, rec.Code)
		}
	}
	if rec := do(t, router, http.MethodGet, "/api/quizzes", nil); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", rec.Code)
	}
	if rec := do(t, router, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz must not be limited, status = %d", rec.Code)
	}
}

func TestParseBoolParam(t *testing.T) {
	tests := map[string]bool{"true": true, "YES": true, "1": true, "0": false, "": false}
	for value, want := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?published="+value, nil)
		if got := parseBoolParam(c, "published"); got != want {
			t.Fatalf("parseBoolParam(%q) = %v, want %v", value, got, want)
		}
	}
}
