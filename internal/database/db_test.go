package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/perfeicloud/cashbook-api/internal/config"
)

func TestBuildDSN(t *testing.T) {
	cfg := config.Config{
		DBUser: "cashbook", DBPass: "hunter2",
		DBHost: "db.internal", DBPort: "3306", DBName: "cashbook",
	}
	assert.Equal(t,
		"cashbook:hunter2@tcp(db.internal:3306)/cashbook?charset=utf8mb4&parseTime=true&loc=UTC",
		buildDSN(cfg))
}

func TestBuildDSNWithoutPassword(t *testing.T) {
	cfg := config.Config{
		DBUser: "root",
		DBHost: "127.0.0.1", DBPort: "3307", DBName: "cashbook_test",
	}
	assert.Equal(t,
		"root@tcp(127.0.0.1:3307)/cashbook_test?charset=utf8mb4&parseTime=true&loc=UTC",
		buildDSN(cfg))
}
