package store

import (
	"context"
	"testing"
)

func TestMemoryDebitCredit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Seed("alice", 100)

	if err := m.Debit(ctx, "alice", 101); err == nil {
		t.Fatalf("overdraw allowed")
	}
	if err := m.Debit(ctx, "alice", 40); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if err := m.Credit(ctx, "alice", 10); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if bal, _ := m.GetBalance(ctx, "alice"); bal != 70 {
		t.Fatalf("balance: %d", bal)
	}
}

func TestMemoryItems(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Seed("alice", 0, "sword", "dragon")

	items, _ := m.GetItems(ctx, "alice")
	if len(items) != 2 || items[0] != "dragon" {
		t.Fatalf("items not sorted: %v", items)
	}
	if err := m.RemoveItems(ctx, "alice", []string{"bow"}); err == nil {
		t.Fatalf("remove of missing item allowed")
	}
	if err := m.AddItems(ctx, "alice", []string{"sword"}); err == nil {
		t.Fatalf("duplicate add allowed")
	}
	if err := m.AddItems(ctx, "bob", []string{"sword"}); err != nil {
		t.Fatalf("add to fresh actor: %v", err)
	}
}
