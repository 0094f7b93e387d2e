package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestUp_DatabaseFailure(t *testing.T) {
	db, dbmock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbmock.ExpectQuery(".*").WillReturnError(context.DeadlineExceeded)

	err = Up(context.Background(), db)
	require.Error(t, err)
}

func TestMigrate_InvalidDSN(t *testing.T) {
	err := Migrate(context.Background(), "not-a-dsn")
	require.Error(t, err)
}
