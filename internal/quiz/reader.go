package quiz

import (
	"context"
	"fmt"
	"strings"
)

// GetQuizByID assembles the full tree of one quiz. A missing quiz is reported
// through the boolean, not an error.
func (s *Service) GetQuizByID(ctx context.Context, quizID string) (Quiz, bool, error) {
	var (
		quiz  Quiz
		found bool
	)
	err := s.store.View(ctx, func(view Store) error {
		summary, ok, err := view.FindQuiz(ctx, quizID)
		if err != nil || !ok {
			return err
		}
		questions, err := loadQuestions(ctx, view, summary.ID)
		if err != nil {
			return err
		}
		quiz = Quiz{QuizSummary: summary, Questions: questions}
		found = true
		return nil
	})
	if err != nil {
		return Quiz{}, false, fmt.Errorf("get quiz %s: %w", quizID, err)
	}
	return quiz, found, nil
}

// GetAllPublishedQuizzes returns every published quiz with its questions and
// answers. The result is never nil, and neither is any nested slice.
func (s *Service) GetAllPublishedQuizzes(ctx context.Context) ([]Quiz, error) {
	quizzes := make([]Quiz, 0)
	err := s.store.View(ctx, func(view Store) error {
		summaries, err := view.ListPublishedQuizzes(ctx)
		if err != nil {
			return err
		}
		for _, summary := range summaries {
			questions, err := loadQuestions(ctx, view, summary.ID)
			if err != nil {
				return err
			}
			quizzes = append(quizzes, Quiz{QuizSummary: summary, Questions: questions})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list published quizzes: %w", err)
	}
	return quizzes, nil
}

// GetQuizzesByTeacher returns shallow records only. A blank teacher id is
// treated as a filter that matches nothing.
func (s *Service) GetQuizzesByTeacher(ctx context.Context, teacherID string) ([]QuizSummary, error) {
	if strings.TrimSpace(teacherID) == "" {
		return []QuizSummary{}, nil
	}
	quizzes, err := s.store.ListQuizzesByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes by teacher: %w", err)
	}
	if quizzes == nil {
		quizzes = []QuizSummary{}
	}
	return quizzes, nil
}

func (s *Service) GetResultsByStudent(ctx context.Context, studentID string) ([]Result, error) {
	if strings.TrimSpace(studentID) == "" {
		return []Result{}, nil
	}
	results, err := s.store.ListResultsByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list results by student: %w", err)
	}
	if results == nil {
		results = []Result{}
	}
	return results, nil
}

func loadQuestions(ctx context.Context, view Store, quizID string) ([]Question, error) {
	questions, err := view.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	out := make([]Question, 0, len(questions))
	for _, question := range questions {
		answers, err := view.ListAnswers(ctx, question.ID)
		if err != nil {
			return nil, err
		}
		if answers == nil {
			answers = []Answer{}
		}
		question.Answers = answers
		out = append(out, question)
	}
	return out, nil
}
