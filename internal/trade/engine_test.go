package trade

import (
	"context"
	"testing"

	"tradehall.gg/internal/catalog"
	"tradehall.gg/internal/protocol"
	"tradehall.gg/internal/store"
)

func testEngine(mem *store.Memory) *Engine {
	gw := NewGateway(NewRateLimitRegistry(), catalog.Defaults(), 1_000_000)
	return NewEngine(gw, mem, mem, nil)
}

func TestEngine_Conservation(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	mem.Seed("alice", 500, "sword")
	mem.Seed("bob", 200, "dragon", "shield")

	offA, _ := NewOffer(100, []string{"sword"})
	offB, _ := NewOffer(0, []string{"dragon"})
	if err := testEngine(mem).Execute(ctx, "alice", offA, "bob", offB); err != nil {
		t.Fatalf("execute: %v", err)
	}

	balA, _ := mem.GetBalance(ctx, "alice")
	balB, _ := mem.GetBalance(ctx, "bob")
	if balA != 400 || balB != 300 {
		t.Fatalf("balances: alice=%d bob=%d", balA, balB)
	}
	if balA+balB != 700 {
		t.Fatalf("coins not conserved: %d", balA+balB)
	}
	itemsA, _ := mem.GetItems(ctx, "alice")
	itemsB, _ := mem.GetItems(ctx, "bob")
	if len(itemsA) != 1 || itemsA[0] != "dragon" {
		t.Fatalf("alice items: %v", itemsA)
	}
	if len(itemsB) != 2 || itemsB[0] != "shield" || itemsB[1] != "sword" {
		t.Fatalf("bob items: %v", itemsB)
	}
}

func TestEngine_NoMutationOnValidationFailure(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	mem.Seed("alice", 50, "sword")
	mem.Seed("bob", 200, "dragon")

	// Alice's balance dropped below her offered amount since confirmation.
	offA, _ := NewOffer(100, nil)
	offB, _ := NewOffer(0, []string{"dragon"})
	err := testEngine(mem).Execute(ctx, "alice", offA, "bob", offB)
	if KindOf(err) != protocol.ErrInsufficientFunds {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	balA, _ := mem.GetBalance(ctx, "alice")
	balB, _ := mem.GetBalance(ctx, "bob")
	itemsB, _ := mem.GetItems(ctx, "bob")
	if balA != 50 || balB != 200 || len(itemsB) != 1 {
		t.Fatalf("state mutated: alice=%d bob=%d items=%v", balA, balB, itemsB)
	}
}

func TestEngine_OwnershipRecheck(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	mem.Seed("alice", 500)
	mem.Seed("bob", 0) // dragon is gone by commit time

	offA, _ := NewOffer(100, nil)
	offB, _ := NewOffer(0, []string{"dragon"})
	err := testEngine(mem).Execute(ctx, "alice", offA, "bob", offB)
	if KindOf(err) != protocol.ErrOwnership {
		t.Fatalf("expected ownership violation, got %v", err)
	}
	balA, _ := mem.GetBalance(ctx, "alice")
	if balA != 500 {
		t.Fatalf("alice debited on failed trade: %d", balA)
	}
}
