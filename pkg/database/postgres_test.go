package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srbenoit/mathops-db-sub010/pkg/config"
)

func TestDSN(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "db", Port: 5432, User: "math", Password: "pw", Name: "mathops", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=math password=pw dbname=mathops sslmode=disable", DSN(cfg))

	cfg.Schema = "legacy"
	assert.Equal(t, "host=db port=5432 user=math password=pw dbname=mathops sslmode=disable search_path=legacy", DSN(cfg))
}
