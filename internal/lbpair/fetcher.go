package lbpair

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"liquidityBook/internal/binmath"
	"liquidityBook/internal/model"
)

// maxBinID is the largest uint24 bin id.
const maxBinID int64 = 1<<24 - 1

// FetchConfig controls a snapshot fetch.
type FetchConfig struct {
	// Pool names the snapshot. Defaults to "SYMBOLX/SYMBOLY".
	Pool         string
	Radius       int64
	BatchSize    int
	Concurrency  int
	MaxRetries   int
	RetryBackoff time.Duration
	QuoteUSD     float64
}

// Fetcher builds bin snapshots from an LBPair contract.
type Fetcher struct {
	caller Caller
	tokens *TokenMetaCache
	conv   *binmath.Converter
	retry  retrier
	cfg    FetchConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewFetcher(caller Caller, tokens *TokenMetaCache, cfg FetchConfig, logger *zap.Logger) *Fetcher {
	if tokens == nil {
		tokens = NewTokenMetaCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 25
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Fetcher{
		caller: caller,
		tokens: tokens,
		conv:   binmath.NewConverter(cfg.Radius, logger),
		retry:  newRetrier(cfg.MaxRetries, cfg.RetryBackoff, logger),
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Fetch reads [active-radius, active+radius] at block (nil means latest).
// Only the active price is read from the contract; every other price is
// derived from it so the snapshot shares one reference.
func (f *Fetcher) Fetch(ctx context.Context, pair common.Address, block *big.Int) (model.SnapshotRecord, error) {
	if f.caller == nil {
		return model.SnapshotRecord{}, fmt.Errorf("chain caller is nil")
	}
	parsed, err := PairABI()
	if err != nil {
		return model.SnapshotRecord{}, fmt.Errorf("parse pair abi: %w", err)
	}

	activeID, err := f.callInt(ctx, pair, parsed, "getActiveId", block)
	if err != nil {
		return model.SnapshotRecord{}, err
	}
	binStep, err := f.callInt(ctx, pair, parsed, "getBinStep", block)
	if err != nil {
		return model.SnapshotRecord{}, err
	}
	tokenX, err := f.token(ctx, pair, parsed, "getTokenX", block)
	if err != nil {
		return model.SnapshotRecord{}, err
	}
	tokenY, err := f.token(ctx, pair, parsed, "getTokenY", block)
	if err != nil {
		return model.SnapshotRecord{}, err
	}

	var rawPrice *big.Int
	err = f.retry.do(ctx, "getPriceFromId", func(ctx context.Context) error {
		values, err := callMethod(ctx, f.caller, pair, parsed, "getPriceFromId", block, big.NewInt(activeID))
		if err != nil {
			return err
		}
		rawPrice, err = asBigInt(values[0])
		return permanent(err)
	})
	if err != nil {
		return model.SnapshotRecord{}, err
	}
	activePrice, err := PriceFromX128(rawPrice, tokenX.Decimals, tokenY.Decimals)
	if err != nil {
		return model.SnapshotRecord{}, fmt.Errorf("active price: %w", err)
	}

	from, to := activeID-f.cfg.Radius, activeID+f.cfg.Radius
	if from < 0 {
		from = 0
	}
	if to > maxBinID {
		to = maxBinID
	}
	batches, err := SplitBinRange(from, to, f.cfg.BatchSize)
	if err != nil {
		return model.SnapshotRecord{}, err
	}

	bins := make([]model.Bin, to-from+1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Concurrency)
	for _, batch := range batches {
		batch := batch
		g.Go(func() error {
			for id := batch.From; id <= batch.To; id++ {
				bin, err := f.fetchBin(gctx, pair, parsed, block, id, activeID, activePrice, int(binStep), tokenX, tokenY)
				if err != nil {
					return err
				}
				bins[id-from] = bin
			}
			f.logger.Debug("bin batch fetched",
				zap.String("pair", pair.Hex()),
				zap.Int64("from", batch.From),
				zap.Int64("to", batch.To),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.SnapshotRecord{}, err
	}

	rec := model.SnapshotRecord{
		Pool:        f.cfg.Pool,
		PairAddress: pair.Hex(),
		TokenX:      tokenX,
		TokenY:      tokenY,
		ActiveID:    activeID,
		BinStep:     int(binStep),
		FetchedAt:   f.now().UTC().Format(time.RFC3339),
		Bins:        bins,
	}
	if rec.Pool == "" {
		rec.Pool = tokenX.Symbol + "/" + tokenY.Symbol
	}
	if block != nil {
		rec.Block = block.Uint64()
	}

	f.logger.Info("snapshot fetched",
		zap.String("pool", rec.Pool),
		zap.String("pair", rec.PairAddress),
		zap.Int64("active_id", rec.ActiveID),
		zap.Int("bin_step", rec.BinStep),
		zap.Float64("active_price", activePrice),
		zap.Int("bins", len(rec.Bins)),
	)
	return rec, nil
}

func (f *Fetcher) fetchBin(ctx context.Context, pair common.Address, parsed abi.ABI, block *big.Int, id, activeID int64, activePrice float64, binStep int, tokenX, tokenY model.TokenMeta) (model.Bin, error) {
	var values []interface{}
	err := f.retry.do(ctx, "getBin", func(ctx context.Context) error {
		var err error
		values, err = callMethod(ctx, f.caller, pair, parsed, "getBin", block, big.NewInt(id))
		return err
	})
	if err != nil {
		return model.Bin{}, fmt.Errorf("bin %d: %w", id, err)
	}
	if len(values) < 2 {
		return model.Bin{}, fmt.Errorf("bin %d: expected 2 reserves, got %d", id, len(values))
	}
	rawX, err := asBigInt(values[0])
	if err != nil {
		return model.Bin{}, fmt.Errorf("bin %d reserve x: %w", id, err)
	}
	rawY, err := asBigInt(values[1])
	if err != nil {
		return model.Bin{}, fmt.Errorf("bin %d reserve y: %w", id, err)
	}

	price, err := f.conv.PriceAt(id, activeID, activePrice, binStep)
	if err != nil {
		return model.Bin{}, fmt.Errorf("bin %d price: %w", id, err)
	}
	reserveX := ScaleAmount(rawX, tokenX.Decimals)
	reserveY := ScaleAmount(rawY, tokenY.Decimals)
	return model.Bin{
		ID:           id,
		Price:        price,
		ReserveX:     reserveX,
		ReserveY:     reserveY,
		LiquidityUSD: LiquidityUSD(reserveX, reserveY, price, f.cfg.QuoteUSD),
	}, nil
}

func (f *Fetcher) callInt(ctx context.Context, pair common.Address, parsed abi.ABI, method string, block *big.Int) (int64, error) {
	var out int64
	err := f.retry.do(ctx, method, func(ctx context.Context) error {
		values, err := callMethod(ctx, f.caller, pair, parsed, method, block)
		if err != nil {
			return err
		}
		v, err := asBigInt(values[0])
		if err != nil {
			return permanent(fmt.Errorf("%s: %w", method, err))
		}
		out = v.Int64()
		return nil
	})
	return out, err
}

func (f *Fetcher) token(ctx context.Context, pair common.Address, parsed abi.ABI, method string, block *big.Int) (model.TokenMeta, error) {
	var addr common.Address
	err := f.retry.do(ctx, method, func(ctx context.Context) error {
		values, err := callMethod(ctx, f.caller, pair, parsed, method, block)
		if err != nil {
			return err
		}
		addr, err = asAddress(values[0])
		return permanent(err)
	})
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("%s: %w", method, err)
	}

	if meta, ok := f.tokens.Get(addr); ok {
		return meta, nil
	}
	var meta model.TokenMeta
	err = f.retry.do(ctx, "token metadata", func(ctx context.Context) error {
		var err error
		meta, err = FetchTokenMeta(ctx, f.caller, addr, f.logger)
		return err
	})
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("token %s metadata: %w", addr.Hex(), err)
	}
	f.tokens.Set(addr, meta)
	return meta, nil
}
