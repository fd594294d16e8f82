package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ecat-quiz/internal/opentdb"
	"ecat-quiz/internal/quiz"
)

const defaultImportAmount = 10

func (a *API) HandleSignup(c *gin.Context) {
	var request signupRequest
	if !bindJSON(c, &request) {
		return
	}
	if request.Password == "" {
		badRequest(c, "password is required")
		return
	}

	user, err := a.service.AddUser(c.Request.Context(), quiz.User{
		Name:     strings.TrimSpace(request.Name),
		Email:    request.Email,
		Password: request.Password,
		Role:     request.Role,
	})
	if err != nil {
		a.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (a *API) HandleUserByEmail(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		badRequest(c, "email is required")
		return
	}

	user, found, err := a.service.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		a.writeServiceError(c, err)
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, errorResponse{Error: "user not found"})
		return
	}
	user.Password = ""
	c.JSON(http.StatusOK, user)
}

func (a *API) HandleLogin(c *gin.Context) {
	var request sessionRequest
	if !bindJSON(c, &request) {
		return
	}

	user, err := a.service.Authenticate(c.Request.Context(), request.Email, request.Password)
	if err != nil {
		a.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (a *API) HandleCreateQuiz(c *gin.Context) {
	var request quizRequest
	if !bindJSON(c, &request) {
		return
	}
	if strings.TrimSpace(request.TeacherID) == "" {
		badRequest(c, "teacher_id is required")
		return
	}

	submitted := request.toQuiz("")
	if err := quiz.ValidateQuiz(submitted); err != nil {
		a.writeServiceError(c, err)
		return
	}

	created, err := a.service.AddQuiz(c.Request.Context(), submitted)
	if err != nil {
		a.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (a *API) HandleImportQuiz(c *gin.Context) {
	var request importRequest
	if !bindJSON(c, &request) {
		return
	}
	if strings.TrimSpace(request.TeacherID) == "" {
		badRequest(c, "teacher_id is required")
		return
	}
	if request.Amount < 0 {
		badRequest(c, "amount must not be negative")
		return
	}
	if request.Amount == 0 {
		request.Amount = defaultImportAmount
	}
	title := strings.TrimSpace(request.Title)
	if title == "" {
		title = "Imported quiz"
	}

	imported, err := a.service.ImportQuiz(c.Request.Context(), request.TeacherID, title, opentdb.Query{
		Amount:     request.Amount,
		Category:   request.Category,
		Difficulty: strings.TrimSpace(request.Difficulty),
	})
	if err != nil {
		a.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, imported)
}

// HandleListQuizzes serves the two listings: ?published=true returns full
// trees, ?teacher_id= returns shallow records. Without a filter the result is
// an empty list.
func (a *API) HandleListQuizzes(c *gin.Context) {
	if parseBoolParam(c, "published") {
		quizzes, err := a.service.GetAllPublishedQuizzes(c.Request.Context())
		if err != nil {
			a.writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, publishedQuizzesResponse{Quizzes: quizzes})
		return
	}

	quizzes, err := a.service.GetQuizzesByTeacher(c.Request.Context(), c.Query("teacher_id"))
	if err != nil {
		a.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, teacherQuizzesResponse{Quizzes: quizzes})
}

func (a *API) HandleGetQuiz(c *gin.Context) {
	item, ok, err := a.service.GetQuizByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.writeServiceError(c, err)
		return
	}
	if !ok {
		a.writeServiceError(c, quiz.ErrQuizNotFound)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (a *API) HandleUpdateQuiz(c *gin.Context) {
	var request quizRequest
	if !bindJSON(c, &request) {
		return
	}

	submitted := request.toQuiz(c.Param("id"))
	if err := quiz.ValidateQuiz(submitted); err != nil {
		a.writeServiceError(c, err)
		return
	}

	updated, err := a.service.UpdateQuiz(c.Request.Context(), submitted)
	if err != nil {
		a.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (a *API) HandleDeleteQuiz(c *gin.Context) {
	if err := a.service.DeleteQuiz(c.Request.Context(), c.Param("id")); err != nil {
		a.writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) HandleSubmitAttempt(c *gin.Context) {
	var request attemptRequest
	if !bindJSON(c, &request) {
		return
	}
	if strings.TrimSpace(request.StudentID) == "" {
		badRequest(c, "student_id is required")
		return
	}
	if request.Responses == nil {
		badRequest(c, "responses is required")
		return
	}

	attempt, err := a.service.SubmitAttempt(c.Request.Context(), c.Param("id"), request.StudentID, request.Responses)
	if err != nil {
		a.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, attempt)
}

func (a *API) HandleAddResult(c *gin.Context) {
	var request resultRequest
	if !bindJSON(c, &request) {
		return
	}
	if strings.TrimSpace(request.QuizID) == "" || strings.TrimSpace(request.StudentID) == "" {
		badRequest(c, "quiz_id and student_id are required")
		return
	}
	if request.Score < 0 || request.TotalQuestions < 0 {
		badRequest(c, "score and total_questions must not be negative")
		return
	}

	result, err := a.service.AddResult(c.Request.Context(), quiz.Result{
		QuizID:         request.QuizID,
		StudentID:      request.StudentID,
		Score:          request.Score,
		TotalQuestions: request.TotalQuestions,
	})
	if err != nil {
		a.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (a *API) HandleStudentResults(c *gin.Context) {
	results, err := a.service.GetResultsByStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resultsResponse{Results: results})
}
