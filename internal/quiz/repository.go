package quiz

import "context"

// Store is the row-level entity store. Every method issues one statement and
// reports failures as *StoreError. Tree-shaped reads and writes are composed
// on top of it by Service.
type Store interface {
	// Tx runs fn inside one write transaction. The Store passed to fn must be
	// used for every call made inside the scope; a nested Tx joins the outer
	// one. Any error returned by fn rolls the whole scope back.
	Tx(ctx context.Context, fn func(Store) error) error
	// View runs fn against a consistent read snapshot.
	View(ctx context.Context, fn func(Store) error) error

	InsertUser(ctx context.Context, user User) error
	FindUserByEmail(ctx context.Context, email string) (User, bool, error)
	CountUsers(ctx context.Context) (int, error)

	InsertQuiz(ctx context.Context, quiz QuizSummary) error
	FindQuiz(ctx context.Context, quizID string) (QuizSummary, bool, error)
	ListQuizzesByTeacher(ctx context.Context, teacherID string) ([]QuizSummary, error)
	ListPublishedQuizzes(ctx context.Context) ([]QuizSummary, error)
	UpdateQuizFields(ctx context.Context, quizID, title string, published bool) (bool, error)
	DeleteQuizRow(ctx context.Context, quizID string) error

	InsertQuestion(ctx context.Context, quizID string, position int, question Question) error
	ListQuestions(ctx context.Context, quizID string) ([]Question, error)
	DeleteQuestionsByQuiz(ctx context.Context, quizID string) error

	InsertAnswer(ctx context.Context, questionID string, position int, answer Answer) error
	ListAnswers(ctx context.Context, questionID string) ([]Answer, error)
	DeleteAnswersByQuiz(ctx context.Context, quizID string) error

	InsertResult(ctx context.Context, result Result) error
	ListResultsByStudent(ctx context.Context, studentID string) ([]Result, error)
}
