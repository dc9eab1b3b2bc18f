package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/smallbiznis/clientbase/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFallsBackToAutoMigrate(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)

	require.NoError(t, Run(conn))
	for _, table := range []string{"companies", "users", "plans", "clients", "payments"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
	assert.True(t, conn.Migrator().HasIndex("payments", "ix_payments_company_status_paid"))

	// idempotent
	require.NoError(t, Run(conn))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, entry := range entries {
		switch {
		case strings.HasSuffix(entry.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(entry.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Positive(t, ups)
	assert.Equal(t, ups, downs)
}

func TestRunRequiresConnection(t *testing.T) {
	assert.Error(t, Run(nil))
}
