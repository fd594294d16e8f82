package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ecat-quiz/internal/opentdb"
)

type QuestionsFetcher func(ctx context.Context, query opentdb.Query) ([]opentdb.RawQuestion, error)

// Service exposes the caller-facing operations. It owns the write-side tree
// synchronization (sync.go) and the read-side aggregation (reader.go); the
// Store underneath stays a thin statement executor.
type Service struct {
	store        Store
	fetcher      QuestionsFetcher
	newID        IDGenerator
	now          func() time.Time
	log          *zap.Logger
	passwordCost int
}

type Option func(*Service)

func WithFetcher(fetcher QuestionsFetcher) Option {
	return func(s *Service) { s.fetcher = fetcher }
}

func WithIDGenerator(newID IDGenerator) Option {
	return func(s *Service) { s.newID = newID }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPasswordCost sets the bcrypt cost used when storing passwords.
func WithPasswordCost(cost int) Option {
	return func(s *Service) { s.passwordCost = cost }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:        store,
		newID:        NewID,
		now:          func() time.Time { return time.Now().UTC() },
		log:          zap.NewNop(),
		passwordCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddUser registers a user. The password is stored as a bcrypt hash; the
// returned user never carries it.
func (s *Service) AddUser(ctx context.Context, user User) (User, error) {
	user.Email = normalizeEmail(user.Email)
	if user.Email == "" {
		return User{}, ErrInvalidEmail
	}
	if !user.Role.Valid() {
		return User{}, ErrInvalidRole
	}
	if user.ID == "" {
		user.ID = s.newID()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.passwordCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hash)

	if err := s.store.InsertUser(ctx, user); err != nil {
		return User{}, fmt.Errorf("add user: %w", err)
	}
	s.log.Debug("user added", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))

	user.Password = ""
	return user, nil
}

// GetUserByEmail returns the stored user including the password hash.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (User, bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return User{}, false, nil
	}
	user, ok, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return User{}, false, fmt.Errorf("get user by email: %w", err)
	}
	return user, ok, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, ok, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("compare password: %w", err)
	}
	user.Password = ""
	return user, nil
}

// SeedDemoUsers adds one teacher and one student when no user exists yet.
func (s *Service) SeedDemoUsers(ctx context.Context) error {
	count, err := s.store.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	demo := []User{
		{Email: "teacher@ecat.com", Password: "password123", Name: "Test Teacher", Role: RoleTeacher},
		{Email: "student@ecat.com", Password: "password123", Name: "Test Student", Role: RoleStudent},
	}
	for _, user := range demo {
		if _, err := s.AddUser(ctx, user); err != nil {
			return err
		}
	}
	s.log.Info("demo users added", zap.Int("count", len(demo)))
	return nil
}

// AddResult records a graded attempt.
func (s *Service) AddResult(ctx context.Context, result Result) (Result, error) {
	if result.ID == "" {
		result.ID = s.newID()
	}
	if result.Date.IsZero() {
		result.Date = s.now()
	}
	if err := s.store.InsertResult(ctx, result); err != nil {
		return Result{}, fmt.Errorf("add result: %w", err)
	}
	s.log.Debug("result added",
		zap.String("result_id", result.ID),
		zap.String("quiz_id", result.QuizID),
		zap.String("student_id", result.StudentID),
		zap.Int("score", result.Score),
	)
	return result, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
