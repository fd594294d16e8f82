package quiz

import "time"

type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

func (r Role) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role"`
}

// QuizSummary is the shallow quiz record. Listings by teacher return this
// shape and never carry questions.
type QuizSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	TeacherID   string    `json:"teacher_id"`
	TeacherName string    `json:"teacher_name,omitempty"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
}

// Quiz is a full quiz tree. Questions is never nil on values returned by the
// Service.
type Quiz struct {
	QuizSummary
	Questions []Question `json:"questions"`
}

type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Answers []Answer `json:"answers"`
}

type Answer struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Result is one graded attempt. Results are append-only.
type Result struct {
	ID             string    `json:"id"`
	QuizID         string    `json:"quiz_id"`
	StudentID      string    `json:"student_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	Date           time.Time `json:"date"`
}
