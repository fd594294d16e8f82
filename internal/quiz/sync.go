package quiz

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// AddQuiz stores a quiz tree in one transaction. Question and answer ids are
// always generated here; the returned tree carries them.
func (s *Service) AddQuiz(ctx context.Context, quiz Quiz) (Quiz, error) {
	if quiz.ID == "" {
		quiz.ID = s.newID()
	}
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = s.now()
	}
	quiz.TeacherName = ""

	var stored []Question
	err := s.store.Tx(ctx, func(tx Store) error {
		if err := tx.InsertQuiz(ctx, quiz.QuizSummary); err != nil {
			return err
		}
		var err error
		stored, err = s.insertQuestions(ctx, tx, quiz.ID, quiz.Questions)
		return err
	})
	if err != nil {
		s.log.Error("add quiz failed", zap.String("quiz_id", quiz.ID), zap.Error(err))
		return Quiz{}, fmt.Errorf("add quiz: %w", err)
	}

	quiz.Questions = stored
	s.log.Debug("quiz added", zap.String("quiz_id", quiz.ID), zap.Int("questions", len(stored)))
	return quiz, nil
}

// UpdateQuiz rewrites title and published in place, then replaces every
// question and answer of the quiz with the submitted ones. Ids of the
// previous children do not survive. CreatedAt and TeacherID are never
// changed.
func (s *Service) UpdateQuiz(ctx context.Context, quiz Quiz) (Quiz, error) {
	if quiz.ID == "" {
		return Quiz{}, ErrQuizNotFound
	}

	var (
		current QuizSummary
		stored  []Question
	)
	err := s.store.Tx(ctx, func(tx Store) error {
		matched, err := tx.UpdateQuizFields(ctx, quiz.ID, quiz.Title, quiz.Published)
		if err != nil {
			return err
		}
		if !matched {
			return ErrQuizNotFound
		}

		if err := tx.DeleteAnswersByQuiz(ctx, quiz.ID); err != nil {
			return err
		}
		if err := tx.DeleteQuestionsByQuiz(ctx, quiz.ID); err != nil {
			return err
		}

		stored, err = s.insertQuestions(ctx, tx, quiz.ID, quiz.Questions)
		if err != nil {
			return err
		}

		var found bool
		current, found, err = tx.FindQuiz(ctx, quiz.ID)
		if err != nil {
			return err
		}
		if !found {
			return ErrQuizNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrQuizNotFound) {
			s.log.Error("update quiz failed", zap.String("quiz_id", quiz.ID), zap.Error(err))
		}
		return Quiz{}, fmt.Errorf("update quiz: %w", err)
	}

	s.log.Debug("quiz replaced", zap.String("quiz_id", quiz.ID), zap.Int("questions", len(stored)))
	return Quiz{QuizSummary: current, Questions: stored}, nil
}

// DeleteQuiz removes answers, then questions, then the quiz row. Deleting an
// unknown quiz is a no-op.
func (s *Service) DeleteQuiz(ctx context.Context, quizID string) error {
	err := s.store.Tx(ctx, func(tx Store) error {
		if err := tx.DeleteAnswersByQuiz(ctx, quizID); err != nil {
			return err
		}
		if err := tx.DeleteQuestionsByQuiz(ctx, quizID); err != nil {
			return err
		}
		return tx.DeleteQuizRow(ctx, quizID)
	})
	if err != nil {
		s.log.Error("delete quiz failed", zap.String("quiz_id", quizID), zap.Error(err))
		return fmt.Errorf("delete quiz: %w", err)
	}
	s.log.Debug("quiz deleted", zap.String("quiz_id", quizID))
	return nil
}

func (s *Service) insertQuestions(ctx context.Context, tx Store, quizID string, questions []Question) ([]Question, error) {
	stored := make([]Question, 0, len(questions))
	for qIdx, question := range questions {
		item := Question{
			ID:      s.newID(),
			Text:    question.Text,
			Answers: make([]Answer, 0, len(question.Answers)),
		}
		if err := tx.InsertQuestion(ctx, quizID, qIdx, item); err != nil {
			return nil, err
		}

		for aIdx, answer := range question.Answers {
			storedAnswer := Answer{
				ID:      s.newID(),
				Text:    answer.Text,
				Correct: answer.Correct,
			}
			if err := tx.InsertAnswer(ctx, item.ID, aIdx, storedAnswer); err != nil {
				return nil, err
			}
			item.Answers = append(item.Answers, storedAnswer)
		}
		stored = append(stored, item)
	}
	return stored, nil
}
