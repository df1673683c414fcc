package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("BCRYPT_COST", "")
	t.Setenv("RESET_QUEUE", "")

	cfg := LoadConfig()
	assert.Equal(t, "8000", cfg.AppPort)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	assert.Equal(t, "password_reset", cfg.ResetQueue)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBDriver: DriverMySQL, DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "3306", DBName: "budget"}
	assert.Equal(t, "u:p@tcp(db:3306)/budget?parseTime=true", cfg.DSN())

	cfg = &Config{DBDriver: DriverSQLite, DBPath: "/tmp/budget.db"}
	assert.Equal(t, "/tmp/budget.db", cfg.DSN())
}

func TestValidate(t *testing.T) {
	cfg := &Config{DBDriver: DriverSQLite}
	require.Error(t, cfg.Validate(), "missing secret must be rejected")

	cfg.SecretKey = "s3cret"
	require.NoError(t, cfg.Validate())

	cfg.DBDriver = "postgres"
	assert.Error(t, cfg.Validate())
}
