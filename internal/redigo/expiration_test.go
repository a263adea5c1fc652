package redigo

import (
	"context"
	"sort"
	"testing"
	"time"

	"redigolite/internal/redigo/types"
)

func TestSweep(t *testing.T) {
	database := NewRedigoDB(4)
	database.Set([]byte("gone-1"), []byte("v"), deadline(10))
	database.Set([]byte("gone-2"), []byte("v"), deadline(19))
	database.Set([]byte("edge"), []byte("v"), deadline(20))
	database.Set([]byte("forever"), []byte("v"), nil)

	removed := database.Sweep(20)
	sort.Strings(removed)

	if len(removed) != 2 || removed[0] != "gone-1" || removed[1] != "gone-2" {
		t.Errorf("expected gone-1 and gone-2 removed, got %v", removed)
	}
	if database.Len() != 2 {
		t.Errorf("expected 2 entries left, got %d", database.Len())
	}
	if _, err := database.Get([]byte("edge"), 20); err != nil {
		t.Errorf("expected the entry at its deadline to survive, got %v", err)
	}
}

func TestSweepEmpty(t *testing.T) {
	if removed := NewRedigoDB(1).Sweep(0); len(removed) != 0 {
		t.Errorf("expected nothing removed, got %v", removed)
	}
}

func TestExpiresAtFromSaturates(t *testing.T) {
	for _, tc := range []struct {
		now  int64
		px   uint64
		want int64
	}{
		{now: 1000, px: 50, want: 1050},
		{now: 1000, px: 0, want: 1000},
		{now: 1000, px: 1<<64 - 1, want: types.MaxExpiresAt},
		{now: types.MaxExpiresAt - 1, px: 5, want: types.MaxExpiresAt},
		{now: types.MaxExpiresAt - 5, px: 5, want: types.MaxExpiresAt},
	} {
		if got := types.ExpiresAtFrom(tc.now, tc.px); got != tc.want {
			t.Errorf("ExpiresAtFrom(%d, %d): expected %d, got %d", tc.now, tc.px, tc.want, got)
		}
	}
}

func TestStartDataExpirationListener(t *testing.T) {
	database := NewRedigoDB(2)
	clock := NewMockClock(100)
	database.Set([]byte("k"), []byte("v"), deadline(50))

	ctx, cancel := context.WithCancel(context.Background())
	swept := make(chan []string, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		database.StartDataExpirationListener(ctx, 5*time.Millisecond, clock, func(removed []string) {
			select {
			case swept <- removed:
			default:
			}
		})
	}()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case removed := <-swept:
			if len(removed) == 0 {
				continue
			}
			if removed[0] != "k" {
				t.Fatalf("expected k swept, got %v", removed)
			}
			cancel()
			<-done
			if database.Len() != 0 {
				t.Errorf("expected an empty keyspace, got %d entries", database.Len())
			}
			return
		case <-timeout:
			cancel()
			t.Fatal("sweeper never removed the expired key")
		}
	}
}
