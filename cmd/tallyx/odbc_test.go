//go:build windows || odbc

package main

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyx-dev/tallyx/internal/config"
)

func TestODBCDriverRegistered(t *testing.T) {
	driver := config.Default().ODBC.Driver
	assert.Contains(t, sql.Drivers(), driver)

	db, err := sql.Open(driver, "DSN=TallyODBC_9000")
	require.NoError(t, err, "open is lazy and only needs the driver")
	assert.NoError(t, db.Close())
}
