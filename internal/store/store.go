// Package store defines the authoritative currency and inventory boundaries
// consumed by the trade engine. Two implementations: sqlite-backed for
// production and in-memory for tests and dev mode.
package store

import "context"

type Currency interface {
	GetBalance(ctx context.Context, actor string) (int64, error)
	Debit(ctx context.Context, actor string, amount int64) error
	Credit(ctx context.Context, actor string, amount int64) error
}

type Inventory interface {
	GetItems(ctx context.Context, actor string) ([]string, error)
	RemoveItems(ctx context.Context, actor string, ids []string) error
	AddItems(ctx context.Context, actor string, ids []string) error
}
