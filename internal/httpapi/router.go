package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ecat-quiz/internal/quiz"
)

type RouterOptions struct {
	Logger *zap.Logger
	// Metrics defaults to a fresh registry when nil.
	Metrics *Metrics
	// Requests per RateWindow per client. Zero disables limiting.
	RateLimit  int
	RateWindow time.Duration
}

func NewRouter(service *quiz.Service, opts RouterOptions) *gin.Engine {
	api := NewAPI(service, opts.Logger)
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(api.log), metrics.Middleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	group := router.Group("/api")
	if opts.RateLimit > 0 && opts.RateWindow > 0 {
		group.Use(rateLimiter(opts.RateLimit, opts.RateWindow))
	}

	group.POST("/users", api.HandleSignup)
	group.GET("/users", api.HandleUserByEmail)
	group.POST("/sessions", api.HandleLogin)

	group.POST("/quizzes", api.HandleCreateQuiz)
	group.POST("/quizzes/import", api.HandleImportQuiz)
	group.GET("/quizzes", api.HandleListQuizzes)
	group.GET("/quizzes/:id", api.HandleGetQuiz)
	group.PUT("/quizzes/:id", api.HandleUpdateQuiz)
	group.DELETE("/quizzes/:id", api.HandleDeleteQuiz)
	group.POST("/quizzes/:id/attempts", api.HandleSubmitAttempt)

	group.POST("/results", api.HandleAddResult)
	group.GET("/students/:id/results", api.HandleStudentResults)

	return router
}
