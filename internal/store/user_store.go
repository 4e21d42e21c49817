// Package store is the persistence gateway for user rows. All SQL against
// the users table lives here; handlers only see models and ErrNotFound.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/davydenkov/user-manage/pkg/models"
)

// ErrNotFound is returned when no user row matches the requested ID.
var ErrNotFound = errors.New("user not found")

// UserStore performs CRUD operations on the users table. Each method is a
// single atomic statement round-trip; no cross-call transaction state.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a store over an open database handle.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// List returns one page of users ordered by ascending ID, plus the total row
// count computed independently of the page window. An out-of-range page
// yields an empty slice and the real total, not an error.
func (s *UserStore) List(ctx context.Context, page, perPage int) ([]models.User, int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	offset := (page - 1) * perPage
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, surname, password, created_at, updated_at FROM users ORDER BY id ASC LIMIT $1 OFFSET $2",
		perPage, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Surname, &u.Password, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}

	return users, total, nil
}

// Get returns the user with the given ID, or ErrNotFound.
func (s *UserStore) Get(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, surname, password, created_at, updated_at FROM users WHERE id = $1", id,
	).Scan(&u.ID, &u.Name, &u.Surname, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Create inserts a row. The database assigns the ID and both timestamps, so
// a freshly created user has created_at equal to updated_at.
func (s *UserStore) Create(ctx context.Context, name, surname, password string) (models.User, error) {
	u := models.User{Name: name, Surname: surname, Password: password}
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO users (name, surname, password) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at",
		name, surname, password,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Update overwrites only the fields present in patch and refreshes
// updated_at. Returns ErrNotFound when the row does not exist before the
// patch is applied.
func (s *UserStore) Update(ctx context.Context, id int64, patch models.UpdateUserRequest) (models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Surname != nil {
		u.Surname = *patch.Surname
	}
	if patch.Password != nil {
		u.Password = *patch.Password
	}

	err = s.db.QueryRowContext(ctx,
		"UPDATE users SET name = $1, surname = $2, password = $3, updated_at = NOW() WHERE id = $4 RETURNING updated_at",
		u.Name, u.Surname, u.Password, id,
	).Scan(&u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// Delete removes the row permanently. Returns ErrNotFound when no row
// matched, so a second delete of the same ID reports the absence.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
