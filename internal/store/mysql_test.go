package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *MYSQLStore {
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN is not set")
	}
	db, err := New(context.Background(), Config{
		DSN:         dsn,
		Automigrate: true,
	})
	require.NoError(t, err)

	ctx := context.Background()
	for _, table := range []string{
		"creator_daily_occasion",
		"creator_daily_revenue",
		"subscription",
		"booking_order",
		"subscription_tier",
		"customer_profile",
	} {
		_, err = db.db.ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err)
	}
	return db
}
