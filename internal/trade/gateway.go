package trade

import (
	"time"

	"tradehall.gg/internal/catalog"
	"tradehall.gg/internal/protocol"
)

// Gateway is the stateless-per-call validation layer: rate limits, currency
// bounds, ownership checks, and the advisory fairness signal.
type Gateway struct {
	limits   *RateLimitRegistry
	catalog  *catalog.Catalog
	maxCoins int64
}

func NewGateway(limits *RateLimitRegistry, cat *catalog.Catalog, maxCoins int64) *Gateway {
	if cat == nil {
		cat = catalog.Defaults()
	}
	return &Gateway{limits: limits, catalog: cat, maxCoins: maxCoins}
}

func (g *Gateway) CheckRateLimit(actor, kind string, cfg LimitConfig) error {
	ok, retryAfter := g.limits.Allow(actor, kind, cfg)
	if !ok {
		return errf(protocol.ErrRateLimit, "too many %s, retry in %s", kind, retryAfter.Round(100*time.Millisecond))
	}
	return nil
}

// CheckCurrency validates a positive coin amount against a balance. Callers
// skip it for zero-coin offers; zero is a valid offer, not a valid debit.
func (g *Gateway) CheckCurrency(balance, amount int64) error {
	if amount <= 0 {
		return errf(protocol.ErrInvalidOffer, "invalid amount %d", amount)
	}
	if g.maxCoins > 0 && amount > g.maxCoins {
		return errf(protocol.ErrInvalidOffer, "amount %d exceeds ceiling %d", amount, g.maxCoins)
	}
	if balance < amount {
		return errf(protocol.ErrInsufficientFunds, "balance %d below offered %d", balance, amount)
	}
	return nil
}

// CheckOwnership verifies every offered item is present in the actor's
// inventory snapshot. The first missing item is named in the error. An
// internal duplicate in the offer is an ownership violation too.
func (g *Gateway) CheckOwnership(actorItems, offered []string) error {
	held := make(map[string]struct{}, len(actorItems))
	for _, id := range actorItems {
		held[id] = struct{}{}
	}
	seen := make(map[string]struct{}, len(offered))
	for _, id := range offered {
		if _, dup := seen[id]; dup {
			return errf(protocol.ErrOwnership, "duplicate item %q", id)
		}
		seen[id] = struct{}{}
		if _, ok := held[id]; !ok {
			return errf(protocol.ErrOwnership, "item %q not owned", id)
		}
	}
	return nil
}

// Fairness is advisory telemetry; it is surfaced to clients and the audit
// log but never blocks a transition.
type Fairness struct {
	ValueA   int64
	ValueB   int64
	Balanced bool
}

func (g *Gateway) Fairness(a, b Offer) Fairness {
	va := g.catalog.OfferValue(a.Coins, a.ItemRefs)
	vb := g.catalog.OfferValue(b.Coins, b.ItemRefs)
	return Fairness{ValueA: va, ValueB: vb, Balanced: g.catalog.Balanced(va, vb)}
}
