package types

import "math"

// MaxExpiresAt is the ceiling an expiry computation saturates to.
const MaxExpiresAt int64 = math.MaxInt64

// Entry is a stored value with its optional absolute deadline,
// in milliseconds since the Unix epoch.
type Entry struct {
	Value     []byte
	ExpiresAt *int64
}

// IsExpired reports whether the entry is logically gone at now.
// An entry whose deadline equals now is still live.
func (entry Entry) IsExpired(now int64) bool {
	return entry.ExpiresAt != nil && now > *entry.ExpiresAt
}

// ExpiresAtFrom adds px milliseconds to now, saturating at MaxExpiresAt.
func ExpiresAtFrom(now int64, px uint64) int64 {
	if now < 0 {
		now = 0
	}
	if px > uint64(MaxExpiresAt-now) {
		return MaxExpiresAt
	}
	return now + int64(px)
}
