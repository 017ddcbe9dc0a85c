package repository

import (
	"context"
	"errors"
	"fmt"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Global error declarations.
var (
	ErrNoPrices      = errors.New("no prices found in datasource")
	ErrUnknownAssets = errors.New("assets not found in datasource")
)

type pricesRepository interface {
	ListPrices(ctx context.Context, arg ListPricesParams) ([]PriceRow, error)
}

// Database holds the connection pool and the query surface used by the
// price series lookups.
type Database struct {
	prices  pricesRepository
	conn    *pgxpool.Pool
	network string
}

// NewDatabase creates a new Database instance and verifies connectivity.
// All lookups through it are scoped to one network.
func NewDatabase(dbURL, network string) (Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return Database{}, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return Database{}, err
	}
	// Ensure the connection is established.
	if err := conn.Ping(context.Background()); err != nil {
		return Database{}, err
	}

	return Database{
		prices:  queries{conn: conn},
		conn:    conn,
		network: network,
	}, nil
}

// Close releases the connection pool.
func (db *Database) Close() {
	if db.conn != nil {
		db.conn.Close()
	}
}
