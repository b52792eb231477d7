package admins

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dkravets/adminboard/internal/common"
	"github.com/dkravets/adminboard/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+admins\s*\(email,\s*password_hash,\s*role\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at\s*$`

	created := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow("id-1", created)
	mock.ExpectQuery(q).
		WithArgs("a@x.com", "hash", "admin").
		WillReturnRows(rows)

	a := &models.Admin{Email: "a@x.com", PasswordHash: "hash", Role: models.RoleAdmin}
	got, err := repo.Create(context.Background(), a)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "id-1" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected admin: %+v", got)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+admins`).
		WithArgs("a@x.com", "hash", "admin").
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Admin{Email: "a@x.com", PasswordHash: "hash", Role: models.RoleAdmin})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*email,\s*password_hash,\s*role,\s*session_token,\s*created_at\s+FROM\s+admins\s+WHERE\s+email\s*=\s*\$1\s*$`

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "session_token", "created_at"}).
		AddRow("id-1", "a@x.com", "hash", "superadmin", "tok", time.Now())
	mock.ExpectQuery(q).WithArgs("a@x.com").WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.Email != "a@x.com" || got.Role != models.RoleSuperAdmin {
		t.Fatalf("unexpected admin: %+v", got)
	}
	if !got.SessionToken.Valid || got.SessionToken.String != "tok" {
		t.Fatalf("unexpected session token: %+v", got.SessionToken)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,`).WithArgs("missing@x.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "missing@x.com")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected common.ErrNotFound, got %v", err)
	}
}

func TestList_ReturnsAllRows(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "session_token", "created_at"}).
		AddRow("id-1", "a@x.com", "h1", "admin", nil, time.Now()).
		AddRow("id-2", "b@x.com", "h2", "superadmin", "tok", time.Now())
	mock.ExpectQuery(`SELECT\s+id,.*FROM\s+admins`).WillReturnRows(rows)

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].Email != "a@x.com" || got[1].Email != "b@x.com" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got[0].SessionToken.Valid {
		t.Fatalf("expected NULL session token for first row")
	}
}

func TestDeleteByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+admins`).
		WithArgs("missing@x.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteByEmail(context.Background(), "missing@x.com")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected common.ErrNotFound, got %v", err)
	}
}

func TestBindSessionToken_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+admins\s+SET\s+session_token\s*=\s*\$2`).
		WithArgs("a@x.com", sql.NullString{String: "tok", Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.BindSessionToken(context.Background(), "a@x.com", "tok"); err != nil {
		t.Fatalf("BindSessionToken error: %v", err)
	}
}

func TestClearSessionToken_WritesNull(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+admins\s+SET\s+session_token\s*=\s*\$2`).
		WithArgs("a@x.com", sql.NullString{}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.ClearSessionToken(context.Background(), "a@x.com"); err != nil {
		t.Fatalf("ClearSessionToken error: %v", err)
	}
}

func TestUpdatePasswordHash_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+admins\s+SET\s+password_hash\s*=\s*\$2`).
		WithArgs("missing@x.com", "newhash").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePasswordHash(context.Background(), "missing@x.com", "newhash")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected common.ErrNotFound, got %v", err)
	}
}
