package repositories

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/eastern-erp/eastern-erp/internal/db/models"
)

var userCols = []string{"id", "email", "name", "password_hash", "role", "active", "created_at", "updated_at"}

func sampleUserRow() *sqlmock.Rows {
	return sqlmock.NewRows(userCols).
		AddRow("user-1", "priya@easternmills.example", "Priya", "$2a$10$hash", models.RoleAuditor, true, time.Now(), time.Now())
}

func emptyUserRow() *sqlmock.Rows {
	return sqlmock.NewRows(userCols)
}

func newUserRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserRepository(db), mock
}

// ---------------------------------------------------------------------------
// GetUserByID
// ---------------------------------------------------------------------------

func TestGetUserByID_Found(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT.*FROM users.*WHERE id").
		WithArgs("user-1").
		WillReturnRows(sampleUserRow())

	user, err := repo.GetUserByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
	if user.Role != models.RoleAuditor {
		t.Errorf("role = %s, want auditor", user.Role)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT.*FROM users.*WHERE id").
		WithArgs("missing").
		WillReturnRows(emptyUserRow())

	user, err := repo.GetUserByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user for not found, got %v", user)
	}
}

func TestGetUserByID_DBError(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT.*FROM users.*WHERE id").
		WithArgs("user-1").
		WillReturnError(errDB)

	_, err := repo.GetUserByID(context.Background(), "user-1")
	if err == nil {
		t.Error("expected error, got nil")
	}
}

// ---------------------------------------------------------------------------
// GetUserByEmail
// ---------------------------------------------------------------------------

func TestGetUserByEmail_Found(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT.*FROM users.*WHERE email").
		WithArgs("priya@easternmills.example").
		WillReturnRows(sampleUserRow())

	user, err := repo.GetUserByEmail(context.Background(), "priya@easternmills.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil {
		t.Fatal("expected user, got nil")
	}
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectQuery("SELECT.*FROM users.*WHERE email").
		WithArgs("nobody@example.com").
		WillReturnRows(emptyUserRow())

	user, err := repo.GetUserByEmail(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user, got %v", user)
	}
}

// ---------------------------------------------------------------------------
// CreateUser
// ---------------------------------------------------------------------------

func TestCreateUser_Success(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{Email: "new@easternmills.example", Name: "New User", Role: models.RoleMerchandiser, Active: true}
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID == "" {
		t.Error("expected ID to be set")
	}
}

func TestCreateUser_DBError(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errDB)

	user := &models.User{Email: "new@easternmills.example", Name: "New User"}
	if err := repo.CreateUser(context.Background(), user); err == nil {
		t.Error("expected error, got nil")
	}
}

// ---------------------------------------------------------------------------
// UpdateUser / DeleteUser
// ---------------------------------------------------------------------------

func TestUpdateUser_Success(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("UPDATE users SET").
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{ID: "user-1", Email: "priya@easternmills.example", Name: "Priya S.", Role: models.RoleAuditor, Active: true}
	if err := repo.UpdateUser(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeleteUser_Success(t *testing.T) {
	repo, mock := newUserRepo(t)
	mock.ExpectExec("DELETE FROM users").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.DeleteUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ---------------------------------------------------------------------------
// ListUsers / Count / Search
// ---------------------------------------------------------------------------

func TestListUsers_Success(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("SELECT COUNT.*FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT.*FROM users.*ORDER BY").
		WillReturnRows(sampleUserRow())

	users, total, err := repo.ListUsers(context.Background(), 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
	if len(users) != 1 {
		t.Errorf("len(users) = %d, want 1", len(users))
	}
}

func TestListUsers_CountError(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("SELECT COUNT.*FROM users").
		WillReturnError(errDB)

	_, _, err := repo.ListUsers(context.Background(), 20, 0)
	if err == nil {
		t.Error("expected error, got nil")
	}
}

func TestUserCount_Success(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("SELECT COUNT.*FROM users").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 7 {
		t.Errorf("count = %d, want 7", count)
	}
}

func TestUserSearch_Success(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("SELECT.*FROM users.*ILIKE").
		WillReturnRows(sampleUserRow())

	users, err := repo.Search(context.Background(), "priya", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("len(users) = %d, want 1", len(users))
	}
}
