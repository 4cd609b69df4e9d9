package ratelimit

import (
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestLimiter(perMinute, burst int) (*Limiter, *clock) {
	c := &clock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl := New(perMinute, burst)
	rl.now = c.now
	return rl, c
}

func TestBurstThenThrottle(t *testing.T) {
	rl, _ := newTestLimiter(6, 3)

	for i := range 3 {
		if !rl.Allow("42").Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
	}

	d := rl.Allow("42")
	if d.Allowed || !d.Warn || d.Warnings != 1 {
		t.Errorf("first throttled decision = %+v", d)
	}

	d = rl.Allow("42")
	if d.Allowed || d.Warn {
		t.Errorf("second throttled decision must not warn again: %+v", d)
	}

	if !rl.Allow("other").Allowed {
		t.Error("senders must not share buckets")
	}
}

func TestRefill(t *testing.T) {
	rl, c := newTestLimiter(6, 1)

	rl.Allow("s")
	if rl.Allow("s").Allowed {
		t.Fatal("bucket should be empty")
	}

	c.t = c.t.Add(12 * time.Second)
	if !rl.Allow("s").Allowed {
		t.Error("one token should refill after 12s at 6/min")
	}
}

func TestCleanupDropsInactiveSenders(t *testing.T) {
	rl, c := newTestLimiter(6, 1)
	rl.Allow("old")

	c.t = c.t.Add(2 * time.Hour)
	rl.Allow("new")
	rl.cleanup()

	if _, ok := rl.limits["old"]; ok {
		t.Error("inactive sender kept")
	}
	if _, ok := rl.limits["new"]; !ok {
		t.Error("active sender dropped")
	}
}

func TestNotice(t *testing.T) {
	if Notice(1) == Notice(3) {
		t.Error("escalating notices expected")
	}
}
