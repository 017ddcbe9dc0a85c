package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const listPricesSQL = `
SELECT date_bin($5, ts, $3) AS bucket, asset_id, AVG(price) AS price
FROM asset_prices
WHERE network = $1
  AND asset_id = ANY($2)
  AND ts >= $3
  AND ts <= $4
GROUP BY bucket, asset_id
ORDER BY bucket ASC, asset_id ASC`

// ListPricesParams selects price rows for a set of assets over a window,
// bucketed to the requested resolution.
type ListPricesParams struct {
	Network    string
	AssetIDs   []string
	StartTime  *time.Time
	EndTime    *time.Time
	Resolution time.Duration
}

// PriceRow is one bucketed price observation.
type PriceRow struct {
	Timestamp time.Time
	AssetID   string
	Price     decimal.Decimal
}

type queries struct {
	conn *pgxpool.Pool
}

func (q queries) ListPrices(ctx context.Context, arg ListPricesParams) ([]PriceRow, error) {
	rows, err := q.conn.Query(ctx, listPricesSQL,
		arg.Network, arg.AssetIDs, arg.StartTime, arg.EndTime, arg.Resolution)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PriceRow
	for rows.Next() {
		var row PriceRow
		if err := rows.Scan(&row.Timestamp, &row.AssetID, &row.Price); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
