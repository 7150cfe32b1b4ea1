package database

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSeed_SkipsWhenCatalogHasData(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM airlines")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	seeded, err := Seed(context.Background(), db, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, seeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeed_InsertsCatalogInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM airlines")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	for i := range seedAirlines {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO airlines")).
			WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
	}
	for i := range seedFeatures {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO features")).
			WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
	}
	// Lufthansa Group / Unaccompanied minors is the ninth row.
	for i := range seedImplementations {
		exp := mock.ExpectExec(regexp.QuoteMeta("INSERT INTO implementations"))
		if i == 8 {
			exp = exp.WithArgs(int64(2), int64(4), "Limited", "Select routes only")
		}
		exp.WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
	}
	mock.ExpectCommit()

	seeded, err := Seed(context.Background(), db, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, seeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeed_RollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM airlines")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO airlines")).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	seeded, err := Seed(context.Background(), db, zaptest.NewLogger(t))
	assert.Error(t, err)
	assert.False(t, seeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}
