package trade

import (
	"sort"

	"tradehall.gg/internal/protocol"
)

// Offer is one side's proposed exchange: coins plus a set of item refs.
type Offer struct {
	Coins    int64
	ItemRefs []string // sorted, no duplicates
}

// NewOffer validates and normalizes client input. Item refs are set-valued:
// an input where duplicates would collapse (len != set size) is rejected
// outright rather than silently shrunk.
func NewOffer(coins int64, itemRefs []string) (Offer, error) {
	if coins < 0 {
		return Offer{}, errf(protocol.ErrInvalidOffer, "negative coins %d", coins)
	}
	seen := make(map[string]struct{}, len(itemRefs))
	refs := make([]string, 0, len(itemRefs))
	for _, id := range itemRefs {
		if id == "" {
			return Offer{}, errf(protocol.ErrInvalidOffer, "empty item ref")
		}
		if _, dup := seen[id]; dup {
			return Offer{}, errf(protocol.ErrInvalidOffer, "duplicate item %q", id)
		}
		seen[id] = struct{}{}
		refs = append(refs, id)
	}
	sort.Strings(refs)
	return Offer{Coins: coins, ItemRefs: refs}, nil
}

func (o Offer) Clone() Offer {
	out := Offer{Coins: o.Coins}
	if len(o.ItemRefs) > 0 {
		out.ItemRefs = append([]string(nil), o.ItemRefs...)
	}
	return out
}

// OfferState pairs an offer with its owner's confirmation flag.
type OfferState struct {
	Offer     Offer
	Confirmed bool
}
