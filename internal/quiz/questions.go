package quiz

import (
	"context"
	"fmt"
	"html"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"ecat-quiz/internal/opentdb"
)

const (
	StatusCorrect         = "correct"
	StatusIncorrect       = "incorrect"
	StatusInvalidQuestion = "invalid_question"
	StatusInvalidAnswer   = "invalid_answer"
	StatusAlreadyAnswered = "already_answered"
)

type SubmittedResponse struct {
	QuestionID string `json:"question_id"`
	AnswerID   string `json:"answer_id"`
}

type ResponseResult struct {
	QuestionID string `json:"question_id"`
	Status     string `json:"status"`
}

// Attempt is a graded submission together with the result row it produced.
type Attempt struct {
	Result    Result           `json:"result"`
	Responses []ResponseResult `json:"responses"`
}

// Grade scores responses against a quiz tree. Only the first response per
// question counts; unanswered questions count as wrong because the total is
// always the number of questions in the quiz.
func Grade(quiz Quiz, responses []SubmittedResponse) ([]ResponseResult, int) {
	lookup := make(map[string]Question, len(quiz.Questions))
	for _, question := range quiz.Questions {
		lookup[question.ID] = question
	}

	answered := make(map[string]bool, len(responses))
	results := make([]ResponseResult, 0, len(responses))
	score := 0

	for _, response := range responses {
		question, ok := lookup[response.QuestionID]
		if !ok {
			results = append(results, ResponseResult{
				QuestionID: response.QuestionID,
				Status:     StatusInvalidQuestion,
			})
			continue
		}

		if answered[question.ID] {
			results = append(results, ResponseResult{
				QuestionID: response.QuestionID,
				Status:     StatusAlreadyAnswered,
			})
			continue
		}

		answer, ok := findAnswer(question, strings.TrimSpace(response.AnswerID))
		if !ok {
			results = append(results, ResponseResult{
				QuestionID: response.QuestionID,
				Status:     StatusInvalidAnswer,
			})
			continue
		}
		answered[question.ID] = true

		status := StatusIncorrect
		if answer.Correct {
			status = StatusCorrect
			score++
		}
		results = append(results, ResponseResult{
			QuestionID: response.QuestionID,
			Status:     status,
		})
	}

	return results, score
}

// SubmitAttempt grades responses against the stored quiz and records the
// result for the student.
func (s *Service) SubmitAttempt(ctx context.Context, quizID, studentID string, responses []SubmittedResponse) (Attempt, error) {
	quiz, ok, err := s.GetQuizByID(ctx, quizID)
	if err != nil {
		return Attempt{}, err
	}
	if !ok {
		return Attempt{}, ErrQuizNotFound
	}

	graded, score := Grade(quiz, responses)
	result, err := s.AddResult(ctx, Result{
		QuizID:         quiz.ID,
		StudentID:      studentID,
		Score:          score,
		TotalQuestions: len(quiz.Questions),
	})
	if err != nil {
		return Attempt{}, err
	}

	return Attempt{Result: result, Responses: graded}, nil
}

// ImportQuiz fetches questions from the configured fetcher and stores them as
// a new unpublished quiz.
func (s *Service) ImportQuiz(ctx context.Context, teacherID, title string, query opentdb.Query) (Quiz, error) {
	if s.fetcher == nil {
		return Quiz{}, ErrFetcherMissing
	}
	if err := query.Validate(); err != nil {
		return Quiz{}, &ValidationError{Problems: []string{err.Error()}}
	}

	raw, err := s.fetcher(ctx, query)
	if err != nil {
		return Quiz{}, fmt.Errorf("%w: %w", ErrQuestionsFetch, err)
	}
	questions := BuildQuestions(raw)
	s.log.Info("questions fetched",
		zap.Int("requested", query.Amount),
		zap.Int("category", query.Category),
		zap.String("difficulty", query.Difficulty),
		zap.Int("received", len(questions)),
	)

	return s.AddQuiz(ctx, Quiz{
		QuizSummary: QuizSummary{
			Title:     title,
			TeacherID: teacherID,
		},
		Questions: questions,
	})
}

func BuildQuestions(raw []opentdb.RawQuestion) []Question {
	questions := make([]Question, 0, len(raw))
	for _, item := range raw {
		questions = append(questions, buildQuestion(item))
	}
	return questions
}

func buildQuestion(raw opentdb.RawQuestion) Question {
	answers := make([]Answer, 0, len(raw.IncorrectAnswers)+1)
	for _, incorrect := range raw.IncorrectAnswers {
		answers = append(answers, Answer{Text: html.UnescapeString(incorrect)})
	}
	answers = append(answers, Answer{
		Text:    html.UnescapeString(raw.CorrectAnswer),
		Correct: true,
	})

	rand.Shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})

	return Question{
		Text:    html.UnescapeString(raw.Question),
		Answers: answers,
	}
}

func findAnswer(question Question, answerID string) (Answer, bool) {
	for _, answer := range question.Answers {
		if answer.ID == answerID {
			return answer, true
		}
	}
	return Answer{}, false
}
