package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"ecat-quiz/internal/quiz"
)

const (
	insertUserStmt      = `INSERT INTO users (id, email, password, name, role) VALUES (?, ?, ?, ?, ?)`
	findUserByEmailStmt = `SELECT id, email, password, name, role FROM users WHERE email = ?`
	countUsersStmt      = `SELECT COUNT(*) FROM users`
)

func (s *Store) InsertUser(ctx context.Context, user quiz.User) error {
	_, err := s.exec(ctx, "insert user", insertUserStmt,
		user.ID,
		user.Email,
		user.Password,
		user.Name,
		string(user.Role),
	)
	return err
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (quiz.User, bool, error) {
	var (
		user quiz.User
		role string
	)
	err := s.q.QueryRowContext(ctx, findUserByEmailStmt, email).
		Scan(&user.ID, &user.Email, &user.Password, &user.Name, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quiz.User{}, false, nil
		}
		return quiz.User{}, false, storeErr("find user", findUserByEmailStmt, []any{email}, err)
	}
	user.Role = quiz.Role(role)
	return user, true, nil
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.q.QueryRowContext(ctx, countUsersStmt).Scan(&count); err != nil {
		return 0, storeErr("count users", countUsersStmt, nil, err)
	}
	return count, nil
}
