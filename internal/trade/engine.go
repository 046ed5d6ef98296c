package trade

import (
	"context"
	"log"

	"tradehall.gg/internal/protocol"
	"tradehall.gg/internal/store"
)

// Engine performs the final re-validation and the value swap for a session
// that reached Executing. It is the only component that writes authoritative
// state.
type Engine struct {
	gateway   *Gateway
	currency  store.Currency
	inventory store.Inventory
	log       *log.Logger
}

func NewEngine(g *Gateway, cur store.Currency, inv store.Inventory, logger *log.Logger) *Engine {
	return &Engine{gateway: g, currency: cur, inventory: inv, log: logger}
}

// Execute re-reads both actors' balance and inventory (time has passed since
// the offers were last validated; stale snapshots must not be trusted) and
// re-runs the binding checks. A validation failure returns before any write,
// so the stores are untouched. After writes begin, an error aborts with
// E_EXECUTION_FAILED; whether earlier writes in the sequence stick is left
// to the store's own atomicity — there is no cross-store two-phase commit.
func (e *Engine) Execute(ctx context.Context, actorA string, offerA Offer, actorB string, offerB Offer) error {
	balA, err := e.currency.GetBalance(ctx, actorA)
	if err != nil {
		return errf(protocol.ErrExecutionFailed, "read balance %s: %v", actorA, err)
	}
	balB, err := e.currency.GetBalance(ctx, actorB)
	if err != nil {
		return errf(protocol.ErrExecutionFailed, "read balance %s: %v", actorB, err)
	}
	itemsA, err := e.inventory.GetItems(ctx, actorA)
	if err != nil {
		return errf(protocol.ErrExecutionFailed, "read items %s: %v", actorA, err)
	}
	itemsB, err := e.inventory.GetItems(ctx, actorB)
	if err != nil {
		return errf(protocol.ErrExecutionFailed, "read items %s: %v", actorB, err)
	}

	if offerA.Coins > 0 {
		if err := e.gateway.CheckCurrency(balA, offerA.Coins); err != nil {
			return err
		}
	}
	if offerB.Coins > 0 {
		if err := e.gateway.CheckCurrency(balB, offerB.Coins); err != nil {
			return err
		}
	}
	if err := e.gateway.CheckOwnership(itemsA, offerA.ItemRefs); err != nil {
		return err
	}
	if err := e.gateway.CheckOwnership(itemsB, offerB.ItemRefs); err != nil {
		return err
	}

	// Fixed mutation order: both debits, both removals, then credits. No
	// intermediate state holds a negative balance or duplicates an item
	// across the two parties.
	if offerA.Coins > 0 {
		if err := e.currency.Debit(ctx, actorA, offerA.Coins); err != nil {
			return e.writeFailed("debit", actorA, err)
		}
	}
	if offerB.Coins > 0 {
		if err := e.currency.Debit(ctx, actorB, offerB.Coins); err != nil {
			return e.writeFailed("debit", actorB, err)
		}
	}
	if len(offerA.ItemRefs) > 0 {
		if err := e.inventory.RemoveItems(ctx, actorA, offerA.ItemRefs); err != nil {
			return e.writeFailed("remove items", actorA, err)
		}
	}
	if len(offerB.ItemRefs) > 0 {
		if err := e.inventory.RemoveItems(ctx, actorB, offerB.ItemRefs); err != nil {
			return e.writeFailed("remove items", actorB, err)
		}
	}
	if offerB.Coins > 0 {
		if err := e.currency.Credit(ctx, actorA, offerB.Coins); err != nil {
			return e.writeFailed("credit", actorA, err)
		}
	}
	if offerA.Coins > 0 {
		if err := e.currency.Credit(ctx, actorB, offerA.Coins); err != nil {
			return e.writeFailed("credit", actorB, err)
		}
	}
	if len(offerB.ItemRefs) > 0 {
		if err := e.inventory.AddItems(ctx, actorA, offerB.ItemRefs); err != nil {
			return e.writeFailed("add items", actorA, err)
		}
	}
	if len(offerA.ItemRefs) > 0 {
		if err := e.inventory.AddItems(ctx, actorB, offerA.ItemRefs); err != nil {
			return e.writeFailed("add items", actorB, err)
		}
	}
	return nil
}

func (e *Engine) writeFailed(op, actor string, err error) error {
	if e.log != nil {
		e.log.Printf("execution: %s %s: %v", op, actor, err)
	}
	return errf(protocol.ErrExecutionFailed, "%s %s: %v", op, actor, err)
}
