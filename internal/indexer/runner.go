package indexer

import (
	"context"
	"math/big"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"slotScope/common/errs"
	"slotScope/internal/model"
	"slotScope/internal/projector"
	"slotScope/internal/registry"
	"slotScope/internal/storage"
)

// Chain is the subset of the RPC client the runner reads from.
type Chain interface {
	GetChainID(ctx context.Context) (*big.Int, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
}

// RunConfig holds runtime settings for the indexer.
type RunConfig struct {
	FromBlock    uint64
	ToBlock      uint64
	Hubs         []common.Address
	Factories    []common.Address
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
	Follow       bool
	PollInterval time.Duration
}

// Runner follows the chain and projects the logs of every registered source.
type Runner struct {
	cfg        RunConfig
	chain      Chain
	store      storage.Store
	projector  *projector.Projector
	archive    storage.Archive
	checkpoint Checkpointer
	logger     *zap.Logger
}

// NewRunner builds a Runner. archive and checkpoint are optional.
func NewRunner(cfg RunConfig, chainClient Chain, store storage.Store, p *projector.Projector, archive storage.Archive, checkpoint Checkpointer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:        cfg,
		chain:      chainClient,
		store:      store,
		projector:  p,
		archive:    archive,
		checkpoint: checkpoint,
		logger:     logger,
	}
}

// Run executes the indexing loop. Without Follow it returns once the
// configured or latest block has been applied.
func (r *Runner) Run(ctx context.Context) error {
	if r.chain == nil {
		return errors.New("chain client is nil")
	}
	if r.store == nil || r.projector == nil {
		return errors.New("store and projector are required")
	}
	if r.cfg.BatchSize == 0 {
		return errors.New("batch size must be greater than zero")
	}
	if len(r.cfg.Hubs)+len(r.cfg.Factories) == 0 {
		return errors.New("at least one hub or factory is required")
	}

	chainID, err := r.chain.GetChainID(ctx)
	if err != nil {
		return errors.Wrap(err, "get chain id")
	}
	if !chainID.IsUint64() {
		return errors.Newf("chain id does not fit in uint64: %s", chainID)
	}

	if err := r.seed(ctx); err != nil {
		return err
	}

	from := r.cfg.FromBlock
	if r.checkpoint != nil {
		last, ok, err := r.checkpoint.Load(ctx)
		if err != nil {
			return err
		}
		if ok && last >= from {
			from = last + 1
			r.logger.Info("resume from checkpoint", zap.Uint64("last_processed", last), zap.Uint64("from", from))
		}
	}

	for {
		to := r.cfg.ToBlock
		if to == 0 {
			latest, err := r.latestWithRetry(ctx)
			if err != nil {
				return errors.Wrap(err, "get latest block")
			}
			to = latest
		}

		if from <= to {
			if err := r.sync(ctx, chainID.Uint64(), from, to); err != nil {
				return err
			}
			from = to + 1
		} else if !r.cfg.Follow {
			r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		}

		if !r.cfg.Follow || (r.cfg.ToBlock != 0 && from > r.cfg.ToBlock) {
			return nil
		}
		if err := sleep(ctx, r.pollInterval()); err != nil {
			return err
		}
	}
}

func (r *Runner) seed(ctx context.Context) error {
	reg := r.projector.Registry()
	if err := SeedRegistry(ctx, reg, r.store, r.cfg.Hubs, r.cfg.Factories, r.cfg.FromBlock); err != nil {
		return err
	}
	r.logger.Info("registry seeded", zap.Int("sources", reg.Len()))
	return nil
}

func (r *Runner) sync(ctx context.Context, chainID, from, to uint64) error {
	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range ranges {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		applied, err := r.processBatch(ctx, chainID, blockRange)
		if err != nil {
			return err
		}

		if r.archive != nil && len(applied) > 0 {
			if err := r.archive.PutLogBatch(applied); err != nil {
				return errors.Wrap(err, "archive logs")
			}
		}
		if r.checkpoint != nil {
			if err := r.checkpoint.Save(ctx, blockRange.To); err != nil {
				return err
			}
		}
		lastBlock.Set(float64(blockRange.To))

		r.logger.Info("batch complete",
			zap.Int("applied", len(applied)),
			zap.Uint64("from", blockRange.From),
			zap.Uint64("to", blockRange.To),
			zap.Int("sources", r.projector.Registry().Len()),
		)
	}
	return nil
}

// processBatch applies the logs of one block range in chain order. Sources
// discovered along the way are backfilled from their discovery block to the
// end of the range. Their logs that precede the discovery log run right after
// it, the rest join the queue in chain order. A new source has nothing applied
// yet, so its own order is kept either way.
func (r *Runner) processBatch(ctx context.Context, chainID uint64, blockRange BlockRange) ([]model.LogRecord, error) {
	reg := r.projector.Registry()
	version := reg.Version()

	r.logger.Debug("fetch logs", zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
	logs, err := r.filterLogsWithRetry(ctx, blockRange.From, blockRange.To, reg.Addresses())
	if err != nil {
		return nil, errors.Wrap(err, "filter logs")
	}
	queue := sortLogs(logs)

	ingestedAt := time.Now().UTC()
	applied := make([]model.LogRecord, 0, len(queue))
	for i := 0; i < len(queue); i++ {
		ts, err := r.blockTimestampWithRetry(ctx, queue[i].BlockNumber)
		if err != nil {
			return nil, errors.Wrapf(err, "block timestamp %d", queue[i].BlockNumber)
		}
		record := buildLogRecord(chainID, queue[i], ts, ingestedAt)

		outcome, err := r.projector.Apply(ctx, record)
		switch {
		case err == nil:
		case errors.Is(err, errs.OutOfOrder), errors.Is(err, projector.ErrUndecodable):
			r.logger.Warn("log skipped", zap.Error(err), zap.String("tx_hash", record.TxHash), zap.Uint64("log_index", record.LogIndex))
		default:
			return nil, err
		}
		if outcome == projector.Applied {
			applied = append(applied, record)
		}

		if reg.Version() == version {
			continue
		}
		discovered := reg.Since(version)
		version = reg.Version()

		extra, err := r.backfill(ctx, discovered, blockRange)
		if err != nil {
			return nil, err
		}
		if len(extra) > 0 {
			current := record.Position()
			var early, later []types.Log
			for _, log := range extra {
				if logPosition(log).Before(current) {
					early = append(early, log)
				} else {
					later = append(later, log)
				}
			}
			rest := make([]types.Log, 0, len(queue)-i-1+len(extra))
			rest = append(rest, sortLogs(early)...)
			rest = append(rest, sortLogs(append(later, queue[i+1:]...))...)
			queue = append(queue[:i+1], rest...)
		}
	}
	return applied, nil
}

// backfill fetches the logs of newly registered sources from their discovery
// block to the end of blockRange.
func (r *Runner) backfill(ctx context.Context, sources []registry.Source, blockRange BlockRange) ([]types.Log, error) {
	from := blockRange.To
	fromBlock := make(map[common.Address]uint64, len(sources))
	for _, source := range sources {
		start := max(source.FromBlock, blockRange.From)
		fromBlock[source.Address] = start
		from = min(from, start)
	}

	logs, err := r.filterLogsWithRetry(ctx, from, blockRange.To, lo.Keys(fromBlock))
	if err != nil {
		return nil, errors.Wrap(err, "backfill discovered sources")
	}
	logs = lo.Filter(logs, func(log types.Log, _ int) bool {
		start, ok := fromBlock[log.Address]
		return ok && log.BlockNumber >= start
	})
	r.logger.Info("backfill discovered sources",
		zap.Int("sources", len(sources)),
		zap.Uint64("from", from),
		zap.Uint64("to", blockRange.To),
		zap.Int("logs", len(logs)),
	)
	return logs, nil
}

func (r *Runner) filterLogsWithRetry(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address) ([]types.Log, error) {
	topics := r.projector.Topics()
	var logs []types.Log
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		logs, err = r.chain.FilterLogs(ctx, fromBlock, toBlock, addresses, topics)
		if err != nil {
			r.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", fromBlock), zap.Uint64("to", toBlock))
		}
		return err
	})
	return logs, err
}

func (r *Runner) blockTimestampWithRetry(ctx context.Context, blockNumber uint64) (uint64, error) {
	var ts uint64
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		ts, err = r.chain.BlockTimestamp(ctx, blockNumber)
		if err != nil {
			r.logger.Warn("block timestamp fetch failed", zap.Error(err), zap.Uint64("block_number", blockNumber))
		}
		return err
	})
	return ts, err
}

func (r *Runner) latestWithRetry(ctx context.Context) (uint64, error) {
	var latest uint64
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		latest, err = r.chain.LatestBlockNumber(ctx)
		return err
	})
	return latest, err
}

func (r *Runner) pollInterval() time.Duration {
	if r.cfg.PollInterval <= 0 {
		return 5 * time.Second
	}
	return r.cfg.PollInterval
}

func sortLogs(logs []types.Log) []types.Log {
	sort.SliceStable(logs, func(i, j int) bool {
		return logPosition(logs[i]).Before(logPosition(logs[j]))
	})
	return logs
}

func logPosition(log types.Log) model.EventPosition {
	return model.EventPosition{
		BlockNumber: log.BlockNumber,
		TxIndex:     uint64(log.TxIndex),
		LogIndex:    uint64(log.Index),
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
