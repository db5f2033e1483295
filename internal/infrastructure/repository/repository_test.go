package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"flowdesk/internal/infrastructure/persistence/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = gormDB.AutoMigrate(
		&models.RuleModel{},
		&models.CalendarModel{},
		&models.PolicyModel{},
		&models.SLAStateModel{},
		&models.AgentModel{},
		&models.TicketModel{},
	)
	require.NoError(t, err)

	return gormDB
}
