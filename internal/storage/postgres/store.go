package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"liquidityBook/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS lb_snapshots (
	pool              TEXT PRIMARY KEY,
	pair_address      TEXT NOT NULL DEFAULT '',
	token_x_address   TEXT NOT NULL DEFAULT '',
	token_x_decimals  SMALLINT NOT NULL DEFAULT 0,
	token_x_symbol    TEXT NOT NULL DEFAULT '',
	token_y_address   TEXT NOT NULL DEFAULT '',
	token_y_decimals  SMALLINT NOT NULL DEFAULT 0,
	token_y_symbol    TEXT NOT NULL DEFAULT '',
	active_id         BIGINT NOT NULL,
	bin_step          INTEGER NOT NULL CHECK (bin_step > 0),
	block_number      BIGINT NOT NULL DEFAULT 0,
	fetched_at        TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS lb_bins (
	pool          TEXT NOT NULL REFERENCES lb_snapshots (pool) ON DELETE CASCADE,
	bin_id        BIGINT NOT NULL,
	price         DOUBLE PRECISION NOT NULL,
	reserve_x     DOUBLE PRECISION NOT NULL,
	reserve_y     DOUBLE PRECISION NOT NULL,
	liquidity_usd DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (pool, bin_id)
);
`

// Store persists bin snapshots in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the snapshot tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UpsertSnapshot replaces the stored snapshot of rec.Pool in one transaction.
func (s *Store) UpsertSnapshot(ctx context.Context, rec model.SnapshotRecord) error {
	if rec.Pool == "" {
		return fmt.Errorf("snapshot pool name required")
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		batch.Queue(`
			INSERT INTO lb_snapshots (
				pool, pair_address,
				token_x_address, token_x_decimals, token_x_symbol,
				token_y_address, token_y_decimals, token_y_symbol,
				active_id, bin_step, block_number, fetched_at, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now(),now())
			ON CONFLICT (pool)
			DO UPDATE SET
				pair_address = EXCLUDED.pair_address,
				token_x_address = EXCLUDED.token_x_address,
				token_x_decimals = EXCLUDED.token_x_decimals,
				token_x_symbol = EXCLUDED.token_x_symbol,
				token_y_address = EXCLUDED.token_y_address,
				token_y_decimals = EXCLUDED.token_y_decimals,
				token_y_symbol = EXCLUDED.token_y_symbol,
				active_id = EXCLUDED.active_id,
				bin_step = EXCLUDED.bin_step,
				block_number = EXCLUDED.block_number,
				fetched_at = EXCLUDED.fetched_at,
				updated_at = now()
		`,
			rec.Pool,
			rec.PairAddress,
			rec.TokenX.Address,
			int16(rec.TokenX.Decimals),
			rec.TokenX.Symbol,
			rec.TokenY.Address,
			int16(rec.TokenY.Decimals),
			rec.TokenY.Symbol,
			rec.ActiveID,
			rec.BinStep,
			int64(rec.Block),
			rec.FetchedAt,
		)
		batch.Queue(`DELETE FROM lb_bins WHERE pool = $1`, rec.Pool)
		for _, bin := range rec.Bins {
			batch.Queue(`
				INSERT INTO lb_bins (pool, bin_id, price, reserve_x, reserve_y, liquidity_usd)
				VALUES ($1,$2,$3,$4,$5,$6)
			`,
				rec.Pool,
				bin.ID,
				bin.Price,
				bin.ReserveX,
				bin.ReserveY,
				bin.LiquidityUSD,
			)
		}

		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("upsert snapshot %s: %w", rec.Pool, err)
			}
		}
		return br.Close()
	})
}

// LoadSnapshot returns the stored snapshot of a pool, bins ordered by id.
func (s *Store) LoadSnapshot(ctx context.Context, pool string) (model.SnapshotRecord, bool, error) {
	if pool == "" {
		return model.SnapshotRecord{}, false, fmt.Errorf("snapshot pool name required")
	}

	rec := model.SnapshotRecord{Pool: pool}
	var xDecimals, yDecimals int16
	var block int64
	row := s.pool.QueryRow(ctx, `
		SELECT pair_address,
			token_x_address, token_x_decimals, token_x_symbol,
			token_y_address, token_y_decimals, token_y_symbol,
			active_id, bin_step, block_number, fetched_at
		FROM lb_snapshots WHERE pool = $1
	`, pool)
	err := row.Scan(
		&rec.PairAddress,
		&rec.TokenX.Address, &xDecimals, &rec.TokenX.Symbol,
		&rec.TokenY.Address, &yDecimals, &rec.TokenY.Symbol,
		&rec.ActiveID, &rec.BinStep, &block, &rec.FetchedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.SnapshotRecord{}, false, nil
		}
		return model.SnapshotRecord{}, false, err
	}
	rec.TokenX.Decimals = uint8(xDecimals)
	rec.TokenY.Decimals = uint8(yDecimals)
	rec.Block = uint64(block)

	rows, err := s.pool.Query(ctx, `
		SELECT bin_id, price, reserve_x, reserve_y, liquidity_usd
		FROM lb_bins WHERE pool = $1 ORDER BY bin_id
	`, pool)
	if err != nil {
		return model.SnapshotRecord{}, false, err
	}
	bins, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Bin, error) {
		var b model.Bin
		err := row.Scan(&b.ID, &b.Price, &b.ReserveX, &b.ReserveY, &b.LiquidityUSD)
		return b, err
	})
	if err != nil {
		return model.SnapshotRecord{}, false, fmt.Errorf("load bins %s: %w", pool, err)
	}
	rec.Bins = bins
	return rec, true, nil
}

// ListPools returns the stored pool names.
func (s *Store) ListPools(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT pool FROM lb_snapshots ORDER BY pool`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}
