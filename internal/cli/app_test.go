package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"ecat-quiz/internal/quiz"
	"ecat-quiz/internal/quiz/memory"
)

func newSeededService(t *testing.T) (*quiz.Service, quiz.Quiz) {
	t.Helper()
	ctx := context.Background()

	service := quiz.NewService(memory.New(memory.Options{ForeignKeys: true}), quiz.WithPasswordCost(bcrypt.MinCost))
	if err := service.SeedDemoUsers(ctx); err != nil {
		t.Fatalf("SeedDemoUsers failed: %v", err)
	}
	teacher, _, err := service.GetUserByEmail(ctx, "teacher@ecat.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}

	added, err := service.AddQuiz(ctx, quiz.Quiz{
		QuizSummary: quiz.QuizSummary{Title: "Algebra", TeacherID: teacher.ID, Published: true},
		Questions: []quiz.Question{
			{Text: "2+2?", Answers: []quiz.Answer{{Text: "3"}, {Text: "4", Correct: true}}},
			{Text: "3*3?", Answers: []quiz.Answer{{Text: "9", Correct: true}, {Text: "6"}}},
		},
	})
	if err != nil {
		t.Fatalf("AddQuiz failed: %v", err)
	}
	return service, added
}

func TestRunTakesQuizAndRecordsResult(t *testing.T) {
	service, added := newSeededService(t)

	input := strings.Join([]string{
		"student@ecat.com",
		"password123",
		"1",
		"b",
		"z",
		"b",
		"r",
		"q",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := Run(context.Background(), strings.NewReader(input), &out, service); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Welcome, Test Student.",
		"1. Algebra (2 questions, by Test Teacher)",
		"Q1: 2+2?",
		"Correct!",
		"Invalid input. Please enter a letter A-B.",
		"Wrong. Correct answer was 9",
		"Final score: 1/2",
		"Algebra  1/2",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}

	student, _, _ := service.GetUserByEmail(context.Background(), "student@ecat.com")
	results, err := service.GetResultsByStudent(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("GetResultsByStudent failed: %v", err)
	}
	if len(results) != 1 || results[0].QuizID != added.ID || results[0].Score != 1 {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestRunRejectsBadCredentials(t *testing.T) {
	service, _ := newSeededService(t)

	input := strings.Repeat("student@ecat.com\nwrong\n", maxAttempts)
	var out bytes.Buffer
	err := Run(context.Background(), strings.NewReader(input), &out, service)
	if err == nil {
		t.Fatalf("expected error after repeated failed sign-in")
	}
	if strings.Count(out.String(), "Invalid email or password.") != maxAttempts {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestRunStopsAtEndOfInput(t *testing.T) {
	service, _ := newSeededService(t)

	var out bytes.Buffer
	if err := Run(context.Background(), strings.NewReader("student@ecat.com\npassword123"), &out, service); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestGetAnswer(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		count  int
		want   int
		wantOK bool
	}{
		{name: "lowercase", input: "b\n", count: 3, want: 1, wantOK: true},
		{name: "retry then valid", input: "x\nA\n", count: 2, want: 0, wantOK: true},
		{name: "out of range", input: "D\nD\nD\n", count: 3, want: -1},
		{name: "no options", input: "A\n", count: 0, want: -1},
		{name: "eof", input: "", count: 2, want: -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := getAnswer(bufio.NewReader(strings.NewReader(tc.input)), &bytes.Buffer{}, tc.count)
			if got != tc.want || ok != tc.wantOK {
				t.Fatalf("getAnswer = (%d, %v), want (%d, %v)", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}
