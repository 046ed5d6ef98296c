package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process store. Safe for concurrent use.
type Memory struct {
	mu       sync.Mutex
	balances map[string]int64
	items    map[string]map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{
		balances: map[string]int64{},
		items:    map[string]map[string]struct{}{},
	}
}

// Seed sets an actor's balance and items, replacing whatever was there.
func (m *Memory) Seed(actor string, coins int64, items ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[actor] = coins
	set := map[string]struct{}{}
	for _, id := range items {
		set[id] = struct{}{}
	}
	m.items[actor] = set
}

func (m *Memory) GetBalance(_ context.Context, actor string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[actor], nil
}

func (m *Memory) Debit(_ context.Context, actor string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("debit %s: negative amount %d", actor, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[actor] < amount {
		return fmt.Errorf("debit %s: balance %d below %d", actor, m.balances[actor], amount)
	}
	m.balances[actor] -= amount
	return nil
}

func (m *Memory) Credit(_ context.Context, actor string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("credit %s: negative amount %d", actor, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[actor] += amount
	return nil
}

func (m *Memory) GetItems(_ context.Context, actor string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.items[actor]))
	for id := range m.items[actor] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) RemoveItems(_ context.Context, actor string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.items[actor]
	for _, id := range ids {
		if _, ok := set[id]; !ok {
			return fmt.Errorf("remove %s: item %q not held", actor, id)
		}
	}
	for _, id := range ids {
		delete(set, id)
	}
	return nil
}

func (m *Memory) AddItems(_ context.Context, actor string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.items[actor]
	if set == nil {
		set = map[string]struct{}{}
		m.items[actor] = set
	}
	for _, id := range ids {
		if _, ok := set[id]; ok {
			return fmt.Errorf("add %s: item %q already held", actor, id)
		}
	}
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return nil
}
