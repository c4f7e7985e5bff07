package testsupport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresTransactionIsRolledBack(t *testing.T) {
	helper := NewTestPostgres(t)
	tx := helper.Tx()

	_, err := tx.Exec(`INSERT INTO voice_agents (id, name) VALUES (gen_random_uuid(), 'rollback-check')`)
	require.NoError(t, err)

	var count int
	require.NoError(t, tx.Get(&count, `SELECT COUNT(*) FROM voice_agents WHERE name = 'rollback-check'`))
	assert.Equal(t, 1, count)

	helper.Rollback()

	require.NoError(t, helper.DB().GetContext(context.Background(), &count,
		`SELECT COUNT(*) FROM voice_agents WHERE name = 'rollback-check'`))
	assert.Zero(t, count)
}
