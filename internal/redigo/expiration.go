package redigo

import (
	"context"
	"time"

	"github.com/samber/lo"

	"redigolite/internal/redigo/types"
)

// Sweep physically removes every entry expired at now and returns the
// removed keys. Reads never depend on it: Get already hides expired entries.
func (database *RedigoDB) Sweep(now int64) []string {
	removed := make([]string, 0)

	for _, shard := range database.shards {
		shard.storeMutex.Lock()

		expiredKeys := lo.FilterMap(
			lo.Entries(shard.store),
			func(entry lo.Entry[string, types.Entry], _ int) (string, bool) {
				return entry.Key, entry.Value.IsExpired(now)
			},
		)

		lo.ForEach(expiredKeys, func(key string, _ int) {
			delete(shard.store, key)
		})

		shard.storeMutex.Unlock()

		removed = append(removed, expiredKeys...)
	}

	return removed
}

// StartDataExpirationListener sweeps the keyspace every interval until ctx
// is done. onSweep, when set, receives the keys removed by each pass.
func (database *RedigoDB) StartDataExpirationListener(
	ctx context.Context,
	interval time.Duration,
	clock Clock,
	onSweep func(removed []string),
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := database.Sweep(clock.NowMillis())
			if onSweep != nil {
				onSweep(removed)
			}
		}
	}
}
