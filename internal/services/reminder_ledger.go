package services

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/terraincognita07/autobuyer/internal/schedule"
)

// ReminderLedgerTTL is how long a claim is kept. It must exceed one day.
const ReminderLedgerTTL = 36 * time.Hour

// ReminderLedger remembers which users were already reminded for a target date.
type ReminderLedger interface {
	// Claim marks the pair as reminded and reports false if it already was.
	Claim(ctx context.Context, userID uint, target time.Time) (bool, error)
	Release(ctx context.Context, userID uint, target time.Time) error
}

func reminderLedgerKey(userID uint, target time.Time) string {
	return fmt.Sprintf("%d:%s", userID, schedule.FormatDate(target))
}

type MemoryReminderLedger struct {
	entries *cache.Cache
}

func NewMemoryReminderLedger(ttl time.Duration) *MemoryReminderLedger {
	if ttl <= 0 {
		ttl = ReminderLedgerTTL
	}
	return &MemoryReminderLedger{entries: cache.New(ttl, time.Hour)}
}

func (ledger *MemoryReminderLedger) Claim(_ context.Context, userID uint, target time.Time) (bool, error) {
	if err := ledger.entries.Add(reminderLedgerKey(userID, target), time.Now().UTC(), cache.DefaultExpiration); err != nil {
		return false, nil
	}
	return true, nil
}

func (ledger *MemoryReminderLedger) Release(_ context.Context, userID uint, target time.Time) error {
	ledger.entries.Delete(reminderLedgerKey(userID, target))
	return nil
}

// RedisReminderLedger shares the ledger between several instances of the
// service.
type RedisReminderLedger struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisReminderLedger(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisReminderLedger {
	if prefix == "" {
		prefix = "autobuyer:reminded"
	}
	if ttl <= 0 {
		ttl = ReminderLedgerTTL
	}
	return &RedisReminderLedger{client: client, prefix: prefix, ttl: ttl}
}

func (ledger *RedisReminderLedger) key(userID uint, target time.Time) string {
	return ledger.prefix + ":" + reminderLedgerKey(userID, target)
}

func (ledger *RedisReminderLedger) Claim(ctx context.Context, userID uint, target time.Time) (bool, error) {
	claimed, err := ledger.client.SetNX(ctx, ledger.key(userID, target), time.Now().UTC().Format(time.RFC3339), ledger.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim reminder: %w", err)
	}
	return claimed, nil
}

func (ledger *RedisReminderLedger) Release(ctx context.Context, userID uint, target time.Time) error {
	if err := ledger.client.Del(ctx, ledger.key(userID, target)).Err(); err != nil {
		return fmt.Errorf("release reminder: %w", err)
	}
	return nil
}
