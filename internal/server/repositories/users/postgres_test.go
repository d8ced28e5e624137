package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cheridanh/infradev/internal/common"
	"github.com/cheridanh/infradev/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func testUser() *models.User {
	return &models.User{
		ID:           "11111111-2222-3333-4444-555555555555",
		FirstName:    "Alice",
		LastName:     "Smith",
		Email:        "alice@example.com",
		PasswordHash: "$2a$12$hash",
		Role:         models.RoleUser,
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*first_name,\s*last_name,\s*email,\s*password_hash,\s*role\)\s+VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s+RETURNING\s+created_at$`

	user := testUser()
	created := time.Now()
	mock.ExpectQuery(q).
		WithArgs(user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Role).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	got, err := repo.Create(context.Background(), user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("created_at not filled in: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	user := testUser()
	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs(user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Role).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), user)
	if !errors.Is(err, common.ErrEmailExists) {
		t.Fatalf("want common.ErrEmailExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	user := testUser()
	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WithArgs(user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Role).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), user)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func userRows(u *models.User, lastLogin any) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "first_name", "last_name", "email", "password_hash", "role", "last_login", "created_at"}).
		AddRow(u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Role, lastLogin, time.Now())
}

func TestFindByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`

	user := testUser()
	mock.ExpectQuery(q).
		WithArgs(user.Email).
		WillReturnRows(userRows(user, nil))

	got, err := repo.FindByEmail(context.Background(), user.Email)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != user.ID || got.Email != user.Email {
		t.Fatalf("unexpected row: %+v", got)
	}
	if got.LastLogin != nil {
		t.Fatalf("expected nil LastLogin for NULL column, got %v", got.LastLogin)
	}
}

func TestFindByEmail_LastLoginSet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	user := testUser()
	lastLogin := time.Now().Add(-time.Hour)
	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+email`).
		WithArgs(user.Email).
		WillReturnRows(userRows(user, lastLogin))

	got, err := repo.FindByEmail(context.Background(), user.Email)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.LastLogin == nil || !got.LastLogin.Equal(lastLogin) {
		t.Fatalf("LastLogin not scanned: %+v", got.LastLogin)
	}
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+email`).
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "missing@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFindByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`

	user := testUser()
	mock.ExpectQuery(q).
		WithArgs(user.ID).
		WillReturnRows(userRows(user, nil))

	got, err := repo.FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestExistsByEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\)$`

	mock.ExpectQuery(q).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Fatalf("want true")
	}
}

func TestUpdateLastLogin(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+users\s+SET\s+last_login\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1$`

	at := time.Now()
	mock.ExpectExec(q).
		WithArgs("u1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateLastLogin(context.Background(), "u1", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
