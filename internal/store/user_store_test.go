package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/davydenkov/user-manage/pkg/models"
)

func newStore(t *testing.T) (*UserStore, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return NewUserStore(db), mock, func() { db.Close() }
}

func userRows(users ...models.User) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "surname", "password", "created_at", "updated_at"})
	for _, u := range users {
		rows.AddRow(u.ID, u.Name, u.Surname, u.Password, u.CreatedAt, u.UpdatedAt)
	}
	return rows
}

func TestList_PaginationOffset(t *testing.T) {
	s, mock, cleanup := newStore(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectQuery("SELECT id, name, surname, password, created_at, updated_at FROM users ORDER BY id ASC").
		WithArgs(10, 20). // page 3, per_page 10 -> offset 20
		WillReturnRows(userRows(
			models.User{ID: 21, Name: "A", Surname: "B", Password: "x", CreatedAt: now, UpdatedAt: now},
			models.User{ID: 22, Name: "C", Surname: "D", Password: "y", CreatedAt: now, UpdatedAt: now},
		))

	users, total, err := s.List(context.Background(), 3, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 42 {
		t.Errorf("expected total 42, got %d", total)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].ID != 21 || users[1].ID != 22 {
		t.Errorf("unexpected ids: %d, %d", users[0].ID, users[1].ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestList_OutOfRangePageReturnsEmptyWithTotal(t *testing.T) {
	s, mock, cleanup := newStore(t)
	defer cleanup()

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT id, name, surname, password, created_at, updated_at FROM users").
		WithArgs(10, 90).
		WillReturnRows(userRows())

	users, total, err := s.List(context.Background(), 10, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected empty page, got %d users", len(users))
	}
	if users == nil {
		t.Error("expected empty slice, not nil")
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
}

func TestGet_NotFound(t *testing.T) {
	s, mock, cleanup := newStore(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, name, surname, password, created_at, updated_at FROM users WHERE").
		WithArgs(int64(999999)).
		WillReturnRows(userRows())

	_, err := s.Get(context.Background(), 999999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreate_TimestampsEqual(t *testing.T) {
	s, mock, cleanup := newStore(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("John", "Doe", "x").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))

	u, err := s.Create(context.Background(), "John", "Doe", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != 1 {
		t.Errorf("expected id 1, got %d", u.ID)
	}
	if !u.CreatedAt.Equal(u.UpdatedAt) {
		t.Error("expected created_at to equal updated_at on insert")
	}
	if u.Name != "John" || u.Surname != "Doe" {
		t.Errorf("unexpected name fields: %s %s", u.Name, u.Surname)
	}
}

func TestUpdate_PartialPatchKeepsAbsentFields(t *testing.T) {
	s, mock, cleanup := newStore(t)
	defer cleanup()

	created := time.Now().Add(-time.Hour)
	bumped := time.Now()

	mock.ExpectQuery("SELECT id, name, surname, password, created_at, updated_at FROM users WHERE").
		WithArgs(int64(5)).
		WillReturnRows(userRows(models.User{
			ID: 5, Name: "John", Surname: "Doe", Password: "x",
			CreatedAt: created, UpdatedAt: created,
		}))
	mock.ExpectQuery("UPDATE users SET").
		WithArgs("Jane", "Doe", "x", int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(bumped))

	name := "Jane"
	u, err := s.Update(context.Background(), 5, models.UpdateUserRequest{Name: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Name != "Jane" {
		t.Errorf("expected name Jane, got %s", u.Name)
	}
	if u.Surname != "Doe" {
		t.Errorf("absent surname changed: %s", u.Surname)
	}
	if u.Password != "x" {
		t.Errorf("absent password changed")
	}
	if !u.UpdatedAt.After(u.CreatedAt) {
		t.Error("expected updated_at to move past created_at")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	s, mock, cleanup := newStore(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, name, surname, password, created_at, updated_at FROM users WHERE").
		WithArgs(int64(404)).
		WillReturnRows(userRows())

	name := "Jane"
	_, err := s.Update(context.Background(), 404, models.UpdateUserRequest{Name: &name})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_ThenNotFound(t *testing.T) {
	s, mock, cleanup := newStore(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM users WHERE").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM users WHERE").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Delete(context.Background(), 9); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	if err := s.Delete(context.Background(), 9); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}
