package httpapi

import "ecat-quiz/internal/quiz"

type signupRequest struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     quiz.Role `json:"role"`
}

type sessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// quizRequest is the authoring payload for create and replace. Ids and
// timestamps are assigned by the service and ignored when sent.
type quizRequest struct {
	Title     string          `json:"title"`
	TeacherID string          `json:"teacher_id"`
	Published bool            `json:"published"`
	Questions []quiz.Question `json:"questions"`
}

func (r quizRequest) toQuiz(id string) quiz.Quiz {
	questions := r.Questions
	if questions == nil {
		questions = []quiz.Question{}
	}
	return quiz.Quiz{
		QuizSummary: quiz.QuizSummary{
			ID:        id,
			Title:     r.Title,
			TeacherID: r.TeacherID,
			Published: r.Published,
		},
		Questions: questions,
	}
}

type importRequest struct {
	TeacherID  string `json:"teacher_id"`
	Title      string `json:"title"`
	Amount     int    `json:"amount"`
	Category   int    `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

type attemptRequest struct {
	StudentID string                   `json:"student_id"`
	Responses []quiz.SubmittedResponse `json:"responses"`
}

type resultRequest struct {
	QuizID         string `json:"quiz_id"`
	StudentID      string `json:"student_id"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
}

type publishedQuizzesResponse struct {
	Quizzes []quiz.Quiz `json:"quizzes"`
}

type teacherQuizzesResponse struct {
	Quizzes []quiz.QuizSummary `json:"quizzes"`
}

type resultsResponse struct {
	Results []quiz.Result `json:"results"`
}

type errorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}
