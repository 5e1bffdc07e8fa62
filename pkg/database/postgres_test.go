package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/unihelp-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "unihelp", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=unihelp sslmode=disable", dsn)
}

func TestConfigurePool(t *testing.T) {
	raw, _, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "postgres")
	defer db.Close() //nolint:errcheck

	Configure(db, config.DatabaseConfig{MaxOpenConns: 7, MaxIdleConns: 3})
	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
}
