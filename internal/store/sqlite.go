package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLite backs both Currency and Inventory with a single database file.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// The modernc driver serializes writes; a single connection avoids
	// SQLITE_BUSY churn under concurrent sessions.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma: %w", err)
		}
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS balances (
			actor TEXT PRIMARY KEY,
			coins INTEGER NOT NULL DEFAULT 0 CHECK (coins >= 0)
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			actor TEXT NOT NULL,
			item  TEXT NOT NULL,
			PRIMARY KEY (actor, item)
		);`,
	}
	for _, q := range schema {
		if _, err := db.Exec(q); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("schema: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) GetBalance(ctx context.Context, actor string) (int64, error) {
	var coins int64
	err := s.db.QueryRowContext(ctx, `SELECT coins FROM balances WHERE actor = ?`, actor).Scan(&coins)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return coins, nil
}

func (s *SQLite) Debit(ctx context.Context, actor string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("debit %s: negative amount %d", actor, amount)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE balances SET coins = coins - ? WHERE actor = ? AND coins >= ?`,
		amount, actor, amount)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("debit %s: insufficient balance for %d", actor, amount)
	}
	return nil
}

func (s *SQLite) Credit(ctx context.Context, actor string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("credit %s: negative amount %d", actor, amount)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO balances (actor, coins) VALUES (?, ?)
		 ON CONFLICT(actor) DO UPDATE SET coins = coins + excluded.coins`,
		actor, amount)
	return err
}

func (s *SQLite) GetItems(ctx context.Context, actor string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT item FROM items WHERE actor = ? ORDER BY item`, actor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *SQLite) RemoveItems(ctx context.Context, actor string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, id := range ids {
		res, err := tx.ExecContext(ctx, `DELETE FROM items WHERE actor = ? AND item = ?`, actor, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("remove %s: item %q not held", actor, id)
		}
	}
	return tx.Commit()
}

func (s *SQLite) AddItems(ctx context.Context, actor string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `INSERT INTO items (actor, item) VALUES (?, ?)`, actor, id); err != nil {
			return fmt.Errorf("add %s: item %q: %w", actor, id, err)
		}
	}
	return tx.Commit()
}
