package services

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryReminderLedgerClaimsOncePerUserAndDate(t *testing.T) {
	ledger := NewMemoryReminderLedger(time.Hour)
	ctx := context.Background()
	target := day(2024, time.June, 17)

	claimed, err := ledger.Claim(ctx, 1, target)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = ledger.Claim(ctx, 1, target.Add(5*time.Hour))
	require.NoError(t, err)
	assert.False(t, claimed, "same calendar date")

	claimed, err = ledger.Claim(ctx, 1, target.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = ledger.Claim(ctx, 2, target)
	require.NoError(t, err)
	assert.True(t, claimed)

	require.NoError(t, ledger.Release(ctx, 1, target))
	claimed, err = ledger.Claim(ctx, 1, target)
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestRedisReminderLedgerKeyAndUnavailableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	ledger := NewRedisReminderLedger(client, "", 0)
	target := day(2024, time.June, 17)
	assert.Equal(t, "autobuyer:reminded:7:2024-06-17", ledger.key(7, target))
	assert.Equal(t, ReminderLedgerTTL, ledger.ttl)

	_, err := ledger.Claim(context.Background(), 7, target)
	assert.Error(t, err)
}
