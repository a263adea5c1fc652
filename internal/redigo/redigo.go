package redigo

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"redigolite/internal/redigo/types"
)

const DefaultShardCount = 16

// RedigoDB is the shared keyspace. Keys are spread over independently
// locked shards; every operation touches exactly one shard, so single-key
// operations are linearizable.
type RedigoDB struct {
	shards    []*shard
	shardMask uint64
}

type shard struct {
	storeMutex sync.Mutex
	store      map[string]types.Entry
}

// NewRedigoDB creates an empty keyspace. shardCount must be a power of two;
// anything else falls back to DefaultShardCount.
func NewRedigoDB(shardCount int) *RedigoDB {
	if shardCount <= 0 || shardCount&(shardCount-1) != 0 {
		shardCount = DefaultShardCount
	}

	database := &RedigoDB{
		shards:    make([]*shard, shardCount),
		shardMask: uint64(shardCount - 1),
	}
	for i := range database.shards {
		database.shards[i] = &shard{store: make(map[string]types.Entry)}
	}

	return database
}

func (database *RedigoDB) shardFor(key []byte) *shard {
	return database.shards[xxhash.Sum64(key)&database.shardMask]
}

// Len counts physically present entries, expired ones included.
func (database *RedigoDB) Len() int {
	count := 0
	for _, shard := range database.shards {
		shard.storeMutex.Lock()
		count += len(shard.store)
		shard.storeMutex.Unlock()
	}
	return count
}
