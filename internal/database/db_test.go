package database

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDSN(t *testing.T) {
	out, err := NormalizeDSN("shop:secret@tcp(db:3306)/storefront?charset=latin1")
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "charset="), out)
	assert.Contains(t, out, "charset=utf8mb4")
	assert.NotContains(t, out, "latin1")

	cfg, err := mysql.ParseDSN(out)
	require.NoError(t, err)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, time.UTC, cfg.Loc)
	assert.Equal(t, "storefront", cfg.DBName)
	assert.Equal(t, "db:3306", cfg.Addr)

	// Normalising twice is stable.
	again, err := NormalizeDSN(out)
	require.NoError(t, err)
	assert.Equal(t, out, again)

	plain, err := NormalizeDSN("shop:secret@tcp(db:3306)/storefront")
	require.NoError(t, err)
	assert.Contains(t, plain, "charset=utf8mb4")

	_, err = NormalizeDSN("shop:secret@tcp(db:3306")
	assert.Error(t, err)
}

func TestMigrateRunsEveryStatement(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherFunc(func(string, string) error { return nil })))
	require.NoError(t, err)
	defer db.Close()

	for range schema {
		mock.ExpectExec("").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}
