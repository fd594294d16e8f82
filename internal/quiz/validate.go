package quiz

import (
	"fmt"
	"strings"
)

const minAnswersPerQuestion = 2

// ValidateQuiz applies the authoring rules of the quiz editor: a title, text
// on every question and answer, at least two answers and exactly one correct
// answer per question. Storage does not enforce any of this; callers that
// accept quizzes from people run it before AddQuiz or UpdateQuiz.
func ValidateQuiz(quiz Quiz) error {
	var problems []string

	if strings.TrimSpace(quiz.Title) == "" {
		problems = append(problems, "title is required")
	}

	for qIdx, question := range quiz.Questions {
		number := qIdx + 1
		if strings.TrimSpace(question.Text) == "" {
			problems = append(problems, fmt.Sprintf("question #%d has no text", number))
		}
		if len(question.Answers) < minAnswersPerQuestion {
			problems = append(problems, fmt.Sprintf("question #%d needs at least %d answers", number, minAnswersPerQuestion))
		}

		correct := 0
		for aIdx, answer := range question.Answers {
			if strings.TrimSpace(answer.Text) == "" {
				problems = append(problems, fmt.Sprintf("question #%d answer #%d has no text", number, aIdx+1))
			}
			if answer.Correct {
				correct++
			}
		}
		if correct != 1 {
			problems = append(problems, fmt.Sprintf("question #%d must have exactly one correct answer, has %d", number, correct))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
