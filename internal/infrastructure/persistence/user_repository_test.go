package persistence

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/certibase/backend/pkg/constants"
)

func TestUserExistsByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserRepository(db)

	email := "test@example.com"
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ?)", constants.TableUser, constants.FieldEmail)

	// Test Case 1: User exists
	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs(email).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmail(context.Background(), email)
	assert.NoError(t, err)
	assert.True(t, exists)

	// Test Case 2: User does not exist
	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("nonexistent@example.com").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err = repo.ExistsByEmail(context.Background(), "nonexistent@example.com")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestUserFindByEmailWithPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserRepository(db)

	email := "admin@certibase.io"
	rows := sqlmock.NewRows([]string{"id", "email", "name", "password", "role", "is_active"}).
		AddRow("user-1", email, "Admin", "$2a$10$hash", constants.RoleAdmin, true)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, name, password, role, is_active")).
		WithArgs(email).WillReturnRows(rows)

	u, err := repo.FindByEmailWithPassword(context.Background(), email)
	assert.NoError(t, err)
	assert.NotNil(t, u)
	assert.Equal(t, "user-1", u.ID)
	assert.Equal(t, "$2a$10$hash", u.PasswordHash)
	assert.Equal(t, constants.RoleAdmin, u.Role)

	// Unknown email returns nil, nil
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, name, password, role, is_active")).
		WithArgs("nobody@certibase.io").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password", "role", "is_active"}))

	u, err = repo.FindByEmailWithPassword(context.Background(), "nobody@certibase.io")
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "email", "name", "role", "is_active", "created_date", "last_login"}).
		AddRow("user-1", "a@b.io", "Auditor One", constants.RoleAuditor, true, "2026-01-10 09:30:00", nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, name, role, is_active, created_date, last_login")).
		WithArgs("user-1").WillReturnRows(rows)

	u, err := repo.GetByID(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.NotNil(t, u)
	assert.Equal(t, "Auditor One", u.Name)
	assert.Equal(t, 2026, u.CreatedAt.Year())
	assert.Nil(t, u.LastLogin)
}

func TestUserUpdatePassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET password = ?")).
		WithArgs("$2a$10$newhash", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdatePassword(context.Background(), "user-1", "$2a$10$newhash")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
