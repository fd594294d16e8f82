package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ecat-quiz/internal/quiz"
)

func (a *API) writeServiceError(c *gin.Context, err error) {
	var validationErr *quiz.ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid quiz", Problems: validationErr.Problems})
	case errors.Is(err, quiz.ErrQuizNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "quiz not found"})
	case errors.Is(err, quiz.ErrInvalidRole), errors.Is(err, quiz.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, quiz.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid email or password"})
	case errors.Is(err, quiz.ErrConstraint):
		c.JSON(http.StatusConflict, errorResponse{Error: "request conflicts with stored data"})
	case errors.Is(err, quiz.ErrFetcherMissing):
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "question import is not configured"})
	case errors.Is(err, quiz.ErrQuestionsFetch):
		c.JSON(http.StatusBadGateway, errorResponse{Error: "failed to fetch questions"})
	default:
		a.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

// bindJSON decodes the body into dst and answers 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

func parseBoolParam(c *gin.Context, key string) bool {
	value := strings.ToLower(strings.TrimSpace(c.Query(key)))
	return value == "1" || value == "true" || value == "yes"
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: message})
}
