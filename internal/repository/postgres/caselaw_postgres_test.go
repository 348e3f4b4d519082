package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/Cab789/capstone/internal/model"
)

var caseRows = []string{
	"id", "reporter_id", "volume_barcode", "jurisdiction_id",
	"name", "name_abbreviation", "decision_date_original", "decision_date",
	"first_page", "last_page", "frontend_url", "human_corrected",
	"no_index", "robots_txt_until", "no_index_redacted", "no_index_elided",
	"pdf_key", "last_updated", "restricted",
}

func addCaseRow(rows *sqlmock.Rows, id int64, frontendURL string, restricted bool) *sqlmock.Rows {
	now := time.Now().UTC()
	return rows.AddRow(
		id, int64(1), "vol-1", int64(1),
		"Case v. Case", "Case", "1900-01-01", nil,
		"19", "25", frontendURL, false,
		false, nil, []byte(`{}`), []byte(`{}`),
		"", now, restricted,
	)
}

func TestCaseLawPostgres_FindByFrontendURL(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCaseLawPostgres(db)
	ctx := context.Background()

	t.Run("multiple matches for disambiguation", func(t *testing.T) {
		rows := sqlmock.NewRows(caseRows)
		addCaseRow(rows, 1, "/ill-app/23/19/", true)
		addCaseRow(rows, 2, "/ill-app/23/19/", true)

		mock.ExpectQuery(`FROM cases c JOIN jurisdictions j (.+) WHERE c\.frontend_url = \$1`).
			WithArgs("/ill-app/23/19/").
			WillReturnRows(rows)

		cases, err := repo.FindByFrontendURL(ctx, "/ill-app/23/19/")

		assert.NoError(t, err)
		assert.Len(t, cases, 2)
		assert.True(t, cases[0].Restricted)
	})

	t.Run("no match", func(t *testing.T) {
		mock.ExpectQuery(`WHERE c\.frontend_url = \$1`).
			WithArgs("/fake/123/456/").
			WillReturnRows(sqlmock.NewRows(caseRows))

		cases, err := repo.FindByFrontendURL(ctx, "/fake/123/456/")

		assert.NoError(t, err)
		assert.Empty(t, cases)
	})
}

func TestCaseLawPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCaseLawPostgres(db)

	t.Run("found", func(t *testing.T) {
		rows := addCaseRow(sqlmock.NewRows(caseRows), 42, "/mass/1/1/", false)
		mock.ExpectQuery(`WHERE c\.id = \$1`).
			WithArgs(int64(42)).
			WillReturnRows(rows)

		c, err := repo.FindByID(context.Background(), 42)

		assert.NoError(t, err)
		assert.Equal(t, int64(42), c.ID)
		assert.False(t, c.Restricted)
		assert.NotNil(t, c.NoIndexRedacted)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`WHERE c\.id = \$1`).
			WithArgs(int64(999)).
			WillReturnError(sql.ErrNoRows)

		c, err := repo.FindByID(context.Background(), 999)

		assert.Nil(t, c)
		assert.True(t, errors.Is(err, sql.ErrNoRows))
	})
}

func TestCaseLawPostgres_ListRobotsExcluded(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCaseLawPostgres(db)
	now := time.Now().UTC()

	rows := addCaseRow(sqlmock.NewRows(caseRows), 7, "/mass/1/1/", false)
	mock.ExpectQuery(`WHERE c\.no_index AND c\.robots_txt_until`).
		WithArgs(now).
		WillReturnRows(rows)

	cases, err := repo.ListRobotsExcluded(context.Background(), now)

	assert.NoError(t, err)
	assert.Len(t, cases, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCaseLawPostgres_UpdateBody(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewCaseLawPostgres(db)

	mock.ExpectExec(`INSERT INTO case_bodies`).
		WithArgs(int64(42), "<p>new text</p>").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdateBody(context.Background(), &model.CaseBody{CaseID: 42, HTML: "<p>new text</p>"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
