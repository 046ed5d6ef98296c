package trade

import (
	"sync"
	"time"
)

// Action kinds rate limited by this subsystem.
const (
	ActionTradeRequest = "TRADE_REQUEST"
	ActionOfferUpdate  = "OFFER_UPDATE"
	ActionConfirm      = "CONFIRM"
)

type LimitConfig struct {
	Max    int
	Window time.Duration
}

type limitKey struct {
	actor string
	kind  string
}

// RateLimitRegistry holds sliding windows keyed by (actor, action kind).
// It is the one piece of state shared across sessions; a single short-held
// mutex keeps one actor's check from blocking another's for long.
type RateLimitRegistry struct {
	mu      sync.Mutex
	windows map[limitKey][]time.Time

	now func() time.Time
}

func NewRateLimitRegistry() *RateLimitRegistry {
	return &RateLimitRegistry{
		windows: map[limitKey][]time.Time{},
		now:     time.Now,
	}
}

// Allow prunes the window to entries newer than now-cfg.Window, then either
// records the call or denies it with the wait until the oldest entry expires.
// Invalid configs allow rather than lock an actor out.
func (r *RateLimitRegistry) Allow(actor, kind string, cfg LimitConfig) (bool, time.Duration) {
	if cfg.Max <= 0 || cfg.Window <= 0 {
		return true, 0
	}
	now := r.now()
	cutoff := now.Add(-cfg.Window)

	r.mu.Lock()
	defer r.mu.Unlock()

	key := limitKey{actor: actor, kind: kind}
	win := r.windows[key]
	kept := win[:0]
	for _, ts := range win {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= cfg.Max {
		r.windows[key] = kept
		return false, kept[0].Add(cfg.Window).Sub(now)
	}
	r.windows[key] = append(kept, now)
	return true, 0
}
