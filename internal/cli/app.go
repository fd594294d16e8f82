package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ecat-quiz/internal/quiz"
)

const maxAttempts = 3

var errQuit = errors.New("quit")

// Run signs a user in, then lets them take published quizzes and review
// their results until they quit or input ends.
func Run(ctx context.Context, in io.Reader, out io.Writer, service *quiz.Service) error {
	reader := bufio.NewReader(in)

	user, err := login(ctx, reader, out, service)
	if err != nil {
		if errors.Is(err, errQuit) {
			return nil
		}
		return err
	}
	fmt.Fprintf(out, "\nWelcome, %s.\n", user.Name)

	for {
		quizzes, err := service.GetAllPublishedQuizzes(ctx)
		if err != nil {
			return err
		}
		printMenu(out, quizzes)

		line, err := readLine(reader)
		if err != nil {
			return nil
		}

		switch strings.ToLower(line) {
		case "q", "quit":
			return nil
		case "r", "results":
			if err := printResults(ctx, out, service, user.ID); err != nil {
				return err
			}
			continue
		}

		choice, err := strconv.Atoi(line)
		if err != nil || choice < 1 || choice > len(quizzes) {
			fmt.Fprintln(out, "\nUnknown choice.")
			continue
		}
		if err := play(ctx, reader, out, service, user.ID, quizzes[choice-1]); err != nil {
			return err
		}
	}
}

func login(ctx context.Context, reader *bufio.Reader, out io.Writer, service *quiz.Service) (quiz.User, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fmt.Fprint(out, "Email: ")
		email, err := readLine(reader)
		if err != nil {
			return quiz.User{}, errQuit
		}
		fmt.Fprint(out, "Password: ")
		password, err := readLine(reader)
		if err != nil {
			return quiz.User{}, errQuit
		}

		user, err := service.Authenticate(ctx, email, password)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, quiz.ErrInvalidCredentials) {
			return quiz.User{}, err
		}
		fmt.Fprintln(out, "\nInvalid email or password.")
	}
	return quiz.User{}, errors.New("too many failed sign-in attempts")
}

func printMenu(out io.Writer, quizzes []quiz.Quiz) {
	fmt.Fprintln(out)
	if len(quizzes) == 0 {
		fmt.Fprintln(out, "No quizzes are published yet.")
	}
	for idx, item := range quizzes {
		author := item.TeacherName
		if author == "" {
			author = "unknown"
		}
		fmt.Fprintf(out, "%d. %s (%d questions, by %s)\n", idx+1, item.Title, len(item.Questions), author)
	}
	fmt.Fprint(out, "\nPick a quiz number, r for results, q to quit: ")
}

func play(ctx context.Context, reader *bufio.Reader, out io.Writer, service *quiz.Service, studentID string, item quiz.Quiz) error {
	responses := make([]quiz.SubmittedResponse, 0, len(item.Questions))

	for idx, question := range item.Questions {
		printQuestion(out, idx+1, question)

		chosen, ok := getAnswer(reader, out, len(question.Answers))
		fmt.Fprintln(out)
		if !ok {
			fmt.Fprintf(out, "Skipping. Correct answer was %s\n", correctText(question))
			continue
		}

		answer := question.Answers[chosen]
		responses = append(responses, quiz.SubmittedResponse{QuestionID: question.ID, AnswerID: answer.ID})
		if answer.Correct {
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintf(out, "Wrong. Correct answer was %s\n", correctText(question))
		}
	}

	attempt, err := service.SubmitAttempt(ctx, item.ID, studentID, responses)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nFinal score: %d/%d\n", attempt.Result.Score, attempt.Result.TotalQuestions)
	return nil
}

func printQuestion(out io.Writer, number int, question quiz.Question) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Q%d: %s\n\n", number, question.Text)
	for idx, answer := range question.Answers {
		fmt.Fprintf(out, "%c. %s\n", 'A'+idx, answer.Text)
	}
	fmt.Fprintln(out)
}

func printResults(ctx context.Context, out io.Writer, service *quiz.Service, studentID string) error {
	results, err := service.GetResultsByStudent(ctx, studentID)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	if len(results) == 0 {
		fmt.Fprintln(out, "No results yet.")
		return nil
	}
	for _, result := range results {
		title := result.QuizID
		if item, ok, err := service.GetQuizByID(ctx, result.QuizID); err == nil && ok {
			title = item.Title
		}
		fmt.Fprintf(out, "%s  %s  %d/%d\n", result.Date.Format("2006-01-02 15:04"), title, result.Score, result.TotalQuestions)
	}
	return nil
}

func getAnswer(reader *bufio.Reader, out io.Writer, optionCount int) (int, bool) {
	if optionCount < 1 || optionCount > 26 {
		return -1, false
	}

	maxLetter := byte('A' + optionCount - 1)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		userAnswer, err := readLine(reader)
		if err != nil {
			return -1, false
		}

		userAnswer = strings.ToUpper(userAnswer)
		if len(userAnswer) == 1 {
			letter := userAnswer[0]
			if letter >= 'A' && letter <= maxLetter {
				return int(letter - 'A'), true
			}
		}

		if attempt < maxAttempts {
			fmt.Fprintf(out, "\nInvalid input. Please enter a letter A-%c.\n", maxLetter)
		}
	}

	return -1, false
}

func correctText(question quiz.Question) string {
	for _, answer := range question.Answers {
		if answer.Correct {
			return answer.Text
		}
	}
	return ""
}

// readLine returns the trimmed line. A final line without a newline is still
// returned; io.EOF is reported only when nothing was read.
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
