package trade

import (
	"testing"
	"time"
)

func TestRateLimit_WindowEdges(t *testing.T) {
	r := NewRateLimitRegistry()
	now := time.Unix(1000, 0)
	r.now = func() time.Time { return now }

	cfg := LimitConfig{Max: 5, Window: 60 * time.Second}
	for i := 0; i < 5; i++ {
		ok, _ := r.Allow("alice", ActionTradeRequest, cfg)
		if !ok {
			t.Fatalf("call %d: expected allowed", i+1)
		}
		now = now.Add(time.Second)
	}
	ok, retry := r.Allow("alice", ActionTradeRequest, cfg)
	if ok {
		t.Fatalf("6th call within window: expected denied")
	}
	if retry <= 0 {
		t.Fatalf("expected positive retry-after, got %v", retry)
	}

	// Other actors and other kinds are unaffected.
	if ok, _ := r.Allow("bob", ActionTradeRequest, cfg); !ok {
		t.Fatalf("bob: expected allowed")
	}
	if ok, _ := r.Allow("alice", ActionConfirm, cfg); !ok {
		t.Fatalf("other kind: expected allowed")
	}

	// After the window elapses the next call succeeds.
	now = now.Add(61 * time.Second)
	if ok, _ := r.Allow("alice", ActionTradeRequest, cfg); !ok {
		t.Fatalf("after window: expected allowed")
	}
}

func TestRateLimit_InvalidConfigAllows(t *testing.T) {
	r := NewRateLimitRegistry()
	if ok, _ := r.Allow("alice", ActionConfirm, LimitConfig{}); !ok {
		t.Fatalf("zero config should allow")
	}
}
