package persistence

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/certibase/backend/internal/domain/models"
)

func TestClientNextCodeSeq(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewClientRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(CAST(SUBSTRING(code, 4) AS UNSIGNED)), 0)")).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(42))

	seq, err := repo.NextCodeSeq(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 42, seq)
}

func TestClientGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewClientRepository(db)

	cols := []string{"id", "code", "name", "industry", "employee_count", "address", "city",
		"country", "tax_number", "registration_number", "website", "status",
		"account_manager_id", "notes", "created_date", "last_modified_date"}

	rows := sqlmock.NewRows(cols).AddRow("client-1", "CL-00001", "Acme Manufacturing",
		"manufacturing", 120, "1 Factory Rd", "Leeds", "UK", "GB123", "REG456", "",
		models.ClientStatusActive, nil, "", "2026-02-01 08:00:00", "2026-02-01 08:00:00")

	mock.ExpectQuery("SELECT .+ FROM clients WHERE id = .+").
		WithArgs("client-1").WillReturnRows(rows)

	c, err := repo.GetByID(context.Background(), "client-1")
	assert.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, "CL-00001", c.Code)
	assert.Equal(t, "Acme Manufacturing", c.Name)
	assert.Nil(t, c.AccountManagerID)

	// Missing client returns nil, nil
	mock.ExpectQuery("SELECT .+ FROM clients WHERE id = .+").
		WithArgs("missing").WillReturnRows(sqlmock.NewRows(cols))

	c, err = repo.GetByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestClientList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewClientRepository(db)

	cols := []string{"id", "code", "name", "industry", "employee_count", "address", "city",
		"country", "tax_number", "registration_number", "website", "status",
		"account_manager_id", "notes", "created_date", "last_modified_date"}

	rows := sqlmock.NewRows(cols).
		AddRow("client-1", "CL-00001", "Acme", "manufacturing", 120, "", "", "", "", "", "",
			models.ClientStatusActive, nil, "", "2026-02-01 08:00:00", "2026-02-01 08:00:00").
		AddRow("client-2", "CL-00002", "Beta Foods", "food", 45, "", "", "", "", "", "",
			models.ClientStatusActive, "user-9", "", "2026-02-02 08:00:00", "2026-02-02 08:00:00")

	mock.ExpectQuery("SELECT .+ FROM clients WHERE status = .+ LIMIT .+ OFFSET .+").
		WithArgs(models.ClientStatusActive, 50, 0).WillReturnRows(rows)

	clients, err := repo.List(context.Background(), models.ClientStatusActive, "", 50, 0)
	assert.NoError(t, err)
	assert.Len(t, clients, 2)
	assert.Equal(t, "Beta Foods", clients[1].Name)
	assert.NotNil(t, clients[1].AccountManagerID)
	assert.Equal(t, "user-9", *clients[1].AccountManagerID)
}

func TestClientStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewClientRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) FROM clients GROUP BY status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow(models.ClientStatusActive, 7).
			AddRow(models.ClientStatusProspect, 3))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT industry, COUNT(*) FROM clients")).
		WillReturnRows(sqlmock.NewRows([]string{"industry", "count"}).
			AddRow("manufacturing", 5))

	stats, err := repo.Stats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 7, stats.ByStatus[models.ClientStatusActive])
	assert.Equal(t, 5, stats.ByIndustry["manufacturing"])
}
