package redigo

import (
	"sync/atomic"
	"time"
)

// Clock yields wall-clock time in milliseconds since the Unix epoch.
type Clock interface {
	NowMillis() int64
}

type SystemClock struct{}

func (SystemClock) NowMillis() int64 {
	return time.Now().UnixMilli()
}

// MockClock is a settable Clock for tests.
type MockClock struct {
	millis atomic.Int64
}

func NewMockClock(millis int64) *MockClock {
	clock := &MockClock{}
	clock.millis.Store(millis)
	return clock
}

func (clock *MockClock) NowMillis() int64 {
	return clock.millis.Load()
}

func (clock *MockClock) Set(millis int64) {
	clock.millis.Store(millis)
}

func (clock *MockClock) Advance(duration time.Duration) {
	clock.millis.Add(duration.Milliseconds())
}
