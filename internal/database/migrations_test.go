package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("all tables exist", func(t *testing.T) {
		for _, tableName := range []string{"wallet_positions", "valuations"} {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM information_schema.tables
					WHERE table_schema = 'public'
					AND table_name = $1
				)
			`, tableName).Scan(&exists)

			require.NoError(t, err, "failed to check table existence for %s", tableName)
			assert.True(t, exists, "table %s should exist", tableName)
		}
	})

	t.Run("valuations table has correct columns", func(t *testing.T) {
		expectedColumns := map[string]string{
			"run_id":          "uuid",
			"ticker":          "character varying",
			"direction":       "character varying",
			"current_price":   "numeric",
			"price_source":    "character varying",
			"fx_rate":         "numeric",
			"total_base":      "numeric",
			"profit_loss_pct": "numeric",
			"currency":        "character varying",
			"updated_at":      "timestamp with time zone",
		}

		for colName, expectedType := range expectedColumns {
			var actualType string
			err := testDB.GetRawConn().QueryRow(`
				SELECT data_type
				FROM information_schema.columns
				WHERE table_name = 'valuations' AND column_name = $1
			`, colName).Scan(&actualType)

			require.NoError(t, err, "column %s should exist in valuations table", colName)
			assert.Equal(t, expectedType, actualType, "column %s should have type %s", colName, expectedType)
		}
	})

	t.Run("migrating twice is a no-op", func(t *testing.T) {
		version, err := testDB.Migrate(migrationsDir())
		require.NoError(t, err)
		assert.Equal(t, uint(2), version)
	})
}
