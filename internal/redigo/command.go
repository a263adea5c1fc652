package redigo

import (
	"redigolite/internal/redigo/errors"
	"redigolite/internal/redigo/types"
)

// Set installs value under key, replacing any previous entry and its expiry.
// A nil expiresAt stores a non-expiring entry. The keyspace takes ownership
// of value: callers must not modify it afterwards.
func (database *RedigoDB) Set(key, value []byte, expiresAt *int64) {
	entry := types.Entry{Value: value}
	if expiresAt != nil {
		deadline := *expiresAt
		entry.ExpiresAt = &deadline
	}

	shard := database.shardFor(key)
	shard.storeMutex.Lock()
	defer shard.storeMutex.Unlock()

	shard.store[string(key)] = entry
}

// Get returns the live value for key at now. An entry found past its
// deadline is removed and reported as ErrorKeyExpired, with the entry so
// the caller can log the deadline it missed.
func (database *RedigoDB) Get(key []byte, now int64) (types.Entry, error) {
	shard := database.shardFor(key)
	shard.storeMutex.Lock()
	defer shard.storeMutex.Unlock()

	entry, ok := shard.store[string(key)]
	if !ok {
		return types.Entry{}, errors.ErrorKeyNotFound
	}

	if entry.IsExpired(now) {
		delete(shard.store, string(key))
		return entry, errors.ErrorKeyExpired
	}

	return entry, nil
}

// Delete removes key and reports whether it was present.
func (database *RedigoDB) Delete(key []byte) bool {
	shard := database.shardFor(key)
	shard.storeMutex.Lock()
	defer shard.storeMutex.Unlock()

	if _, exists := shard.store[string(key)]; !exists {
		return false
	}
	delete(shard.store, string(key))
	return true
}
