package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tender-backend/internal/storage"
)

const userColumns = "id, username, email, phone, about, role, password_hash, created_at, updated_at"

func scanUser(row rowScanner) (*storage.User, error) {
	var u storage.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.About, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Storage) CreateUser(ctx context.Context, u *storage.User) (int64, error) {
	const op = "storage.mysql.CreateUser"

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, email, phone, about, role, password_hash) VALUES (?, ?, ?, ?, ?, ?)",
		u.Username, u.Email, u.Phone, u.About, u.Role, u.PasswordHash,
	)
	if err != nil {
		if mysqlErrNumber(err) == errDuplicateEntry {
			return 0, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetUser(ctx context.Context, id int64) (*storage.User, error) {
	const op = "storage.mysql.GetUser"

	u, err := scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

// GetUserByLogin ищет по username или email.
func (s *Storage) GetUserByLogin(ctx context.Context, login string) (*storage.User, error) {
	const op = "storage.mysql.GetUserByLogin"

	u, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ? OR email = ? LIMIT 1", login, login,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]storage.User, error) {
	const op = "storage.mysql.ListUsers"

	rows, err := s.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	users := []storage.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

// UpdateUser writes the non-nil fields of patch. Password must already be
// hashed into passwordHash by the caller.
func (s *Storage) UpdateUser(ctx context.Context, id int64, patch storage.UserPatch, passwordHash string) error {
	const op = "storage.mysql.UpdateUser"

	var (
		sets []string
		args []any
	)
	if patch.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *patch.Username)
	}
	if patch.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *patch.Email)
	}
	if patch.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *patch.Phone)
	}
	if patch.About != nil {
		sets = append(sets, "about = ?")
		args = append(args, *patch.About)
	}
	if patch.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, *patch.Role)
	}
	if passwordHash != "" {
		sets = append(sets, "password_hash = ?")
		args = append(args, passwordHash)
	}

	if len(sets) == 0 {
		_, err := s.GetUser(ctx, id)
		return err
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx, "UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		if mysqlErrNumber(err) == errDuplicateEntry {
			return fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectOneRow(op, res, storage.ErrUserNotFound)
}

func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteUser"

	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectOneRow(op, res, storage.ErrUserNotFound)
}
