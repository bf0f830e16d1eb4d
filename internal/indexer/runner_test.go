package indexer

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotScope/internal/contracts"
	"slotScope/internal/model"
	"slotScope/internal/projector"
	"slotScope/internal/registry"
	"slotScope/internal/storage"
	"slotScope/internal/storage/memory"
)

var (
	hubAddr     = common.HexToAddress("0x1000000000000000000000000000000000000001")
	factoryAddr = common.HexToAddress("0x1000000000000000000000000000000000000002")
	landAddr    = common.HexToAddress("0x2000000000000000000000000000000000000001")
	instance    = common.HexToAddress("0x2000000000000000000000000000000000000002")
	owner       = common.HexToAddress("0x3000000000000000000000000000000000000001")
	buyer       = common.HexToAddress("0x3000000000000000000000000000000000000002")
	usdc        = common.HexToAddress("0x4000000000000000000000000000000000000001")
	moduleA     = common.HexToAddress("0x5000000000000000000000000000000000000001")
)

type fakeChain struct {
	latest uint64
	logs   []types.Log
	calls  []BlockRange
}

func (f *fakeChain) GetChainID(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (f *fakeChain) LatestBlockNumber(context.Context) (uint64, error) {
	return f.latest, nil
}

func (f *fakeChain) BlockTimestamp(_ context.Context, number uint64) (uint64, error) {
	return 1700000000 + number*12, nil
}

// FilterLogs returns matches in reverse order so callers cannot rely on node ordering.
func (f *fakeChain) FilterLogs(_ context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error) {
	f.calls = append(f.calls, BlockRange{From: fromBlock, To: toBlock})
	out := make([]types.Log, 0)
	for i := len(f.logs) - 1; i >= 0; i-- {
		log := f.logs[i]
		if log.BlockNumber < fromBlock || log.BlockNumber > toBlock {
			continue
		}
		if !lo.Contains(addresses, log.Address) {
			continue
		}
		if len(topic0) > 0 && !lo.Contains(topic0, log.Topics[0]) {
			continue
		}
		out = append(out, log)
	}
	return out, nil
}

type memArchive struct {
	logs []model.LogRecord
}

func (a *memArchive) PutLogBatch(logs []model.LogRecord) error {
	a.logs = append(a.logs, logs...)
	return nil
}

func chainLog(t *testing.T, source common.Address, load func() (abi.ABI, error), block uint64, txIndex, logIndex uint, name string, args ...interface{}) types.Log {
	t.Helper()
	parsed, err := load()
	require.NoError(t, err)
	topics, data, err := contracts.EncodeEvent(parsed, name, args...)
	require.NoError(t, err)
	return types.Log{
		Address:     source,
		Topics:      topics,
		Data:        data,
		BlockNumber: block,
		TxHash:      common.BigToHash(new(big.Int).SetUint64(block*1000 + uint64(txIndex))),
		TxIndex:     txIndex,
		Index:       logIndex,
	}
}

func slotParams() contracts.SlotParams {
	return contracts.SlotParams{
		Currency:           usdc,
		BasePrice:          big.NewInt(80),
		Price:              big.NewInt(100),
		TaxPercentage:      big.NewInt(100),
		MaxTaxPercentage:   big.NewInt(1000),
		MinTaxUpdatePeriod: big.NewInt(3600),
		Module:             moduleA,
	}
}

func newTestRunner(t *testing.T, cfg RunConfig, chainClient Chain, store *memory.Store) (*Runner, *projector.Projector, *memArchive) {
	t.Helper()
	p, err := projector.New(store, registry.New(), nil, nil)
	require.NoError(t, err)
	archive := &memArchive{}
	return NewRunner(cfg, chainClient, store, p, archive, NewStateCheckpoint(store, "test"), nil), p, archive
}

func TestRunnerBackfillsDiscoveredSources(t *testing.T) {
	for _, batchSize := range []uint64{100, 5, 1} {
		store := memory.NewStore()
		chainClient := &fakeChain{latest: 20}
		chainClient.logs = []types.Log{
			chainLog(t, landAddr, contracts.LandABI, 8, 0, 0, "SlotActivated", big.NewInt(0)),
			chainLog(t, hubAddr, contracts.HubABI, 10, 0, 0, "LandOpened", landAddr, owner),
			chainLog(t, landAddr, contracts.LandABI, 10, 1, 1, "SlotCreated", big.NewInt(0), slotParams()),
			chainLog(t, landAddr, contracts.LandABI, 12, 0, 0, "SlotPurchased", big.NewInt(0), buyer, big.NewInt(250)),
		}

		runner, p, archive := newTestRunner(t, RunConfig{
			FromBlock: 1,
			Hubs:      []common.Address{hubAddr},
			BatchSize: batchSize,
		}, chainClient, store)
		require.NoError(t, runner.Run(context.Background()), "batch size %d", batchSize)

		kind, ok := p.Registry().Lookup(landAddr)
		require.True(t, ok)
		assert.Equal(t, model.SourceLand, kind)

		slot, ok, err := store.GetSlot(context.Background(), model.SlotID(landAddr, 0))
		require.NoError(t, err)
		require.True(t, ok, "slot created in the discovery block, batch size %d", batchSize)
		require.NotNil(t, slot.Occupant)
		assert.Equal(t, buyer, *slot.Occupant)

		require.Len(t, archive.logs, 3)
		for i := 1; i < len(archive.logs); i++ {
			assert.True(t, archive.logs[i-1].Position().Before(archive.logs[i].Position()))
		}

		last, ok, err := store.LoadState(context.Background(), "test")
		require.NoError(t, err)
		require.True(t, ok)
		assert.EqualValues(t, 20, last)
	}
}

func TestRunnerAppliesLandLogsAheadOfLandOpened(t *testing.T) {
	for _, batchSize := range []uint64{100, 5, 1} {
		store := memory.NewStore()
		chainClient := &fakeChain{latest: 20}
		// The land initializer creates its slot before the hub emits LandOpened.
		chainClient.logs = []types.Log{
			chainLog(t, landAddr, contracts.LandABI, 10, 0, 0, "SlotCreated", big.NewInt(0), slotParams()),
			chainLog(t, hubAddr, contracts.HubABI, 10, 0, 1, "LandOpened", landAddr, owner),
			chainLog(t, landAddr, contracts.LandABI, 10, 0, 2, "SlotDeactivated", big.NewInt(0)),
			chainLog(t, landAddr, contracts.LandABI, 11, 0, 0, "SlotPurchased", big.NewInt(0), buyer, big.NewInt(250)),
		}

		runner, _, archive := newTestRunner(t, RunConfig{
			FromBlock: 1,
			Hubs:      []common.Address{hubAddr},
			BatchSize: batchSize,
		}, chainClient, store)
		require.NoError(t, runner.Run(context.Background()), "batch size %d", batchSize)

		slot, ok, err := store.GetSlot(context.Background(), model.SlotID(landAddr, 0))
		require.NoError(t, err)
		require.True(t, ok, "slot created ahead of LandOpened, batch size %d", batchSize)
		assert.False(t, slot.Active)
		require.NotNil(t, slot.Occupant)
		assert.Equal(t, buyer, *slot.Occupant)

		indexes := lo.Map(archive.logs, func(log model.LogRecord, _ int) uint64 { return log.LogIndex })
		assert.Equal(t, []uint64{1, 0, 2, 0}, indexes, "discovery log first, then the land stream in order")
	}
}

func TestRunnerAppliesInstanceLogsAheadOfSlotsDeployed(t *testing.T) {
	for _, batchSize := range []uint64{100, 5, 1} {
		store := memory.NewStore()
		chainClient := &fakeChain{latest: 20}
		chainClient.logs = []types.Log{
			chainLog(t, instance, contracts.SlotABI, 10, 2, 0, "LiquidationBountyUpdated", big.NewInt(500), big.NewInt(900)),
			chainLog(t, factoryAddr, contracts.FactoryABI, 10, 2, 1, "SlotsDeployed", instance, owner, usdc,
				contracts.SlotsConfig{
					BasePrice:          big.NewInt(50),
					TaxPercentage:      big.NewInt(200),
					MaxTaxPercentage:   big.NewInt(2000),
					MinTaxUpdatePeriod: big.NewInt(60),
					Module:             moduleA,
				},
				contracts.SlotsInitParams{
					InitialPrice:         big.NewInt(0),
					LiquidationBountyBps: big.NewInt(500),
				},
			),
			chainLog(t, instance, contracts.SlotABI, 13, 0, 0, "Deposited", buyer, big.NewInt(70)),
		}

		runner, p, _ := newTestRunner(t, RunConfig{
			FromBlock: 1,
			Factories: []common.Address{factoryAddr},
			BatchSize: batchSize,
		}, chainClient, store)
		require.NoError(t, runner.Run(context.Background()), "batch size %d", batchSize)

		kind, ok := p.Registry().Lookup(instance)
		require.True(t, ok)
		assert.Equal(t, model.SourceSlot, kind)

		slot, ok, err := store.GetSlot(context.Background(), model.SlotID(instance, 0))
		require.NoError(t, err)
		require.True(t, ok)
		assert.EqualValues(t, 900, slot.LiquidationBountyBps, "constructor log applied, batch size %d", batchSize)
		assert.True(t, slot.Deposit.Equal(decimal.NewFromInt(70)))
	}
}

func TestRunnerSeedsFromStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error {
		factory := factoryAddr
		if err := tx.PutLand(ctx, model.Land{Address: instance, Factory: &factory, Owner: owner, CreatedBlock: 5}); err != nil {
			return err
		}
		return tx.PutSlot(ctx, model.Slot{
			ID:        model.SlotID(instance, 0),
			Land:      instance,
			Vacant:    true,
			Currency:  usdc,
			BasePrice: decimal.NewFromInt(50),
			Price:     decimal.NewFromInt(50),
			Active:    true,
		})
	}))

	chainClient := &fakeChain{latest: 40}
	chainClient.logs = []types.Log{
		chainLog(t, instance, contracts.SlotABI, 30, 0, 0, "Deposited", buyer, big.NewInt(70)),
	}
	runner, p, _ := newTestRunner(t, RunConfig{
		FromBlock: 25,
		Factories: []common.Address{factoryAddr},
		BatchSize: 10,
	}, chainClient, store)
	require.NoError(t, runner.Run(ctx))

	kind, ok := p.Registry().Lookup(instance)
	require.True(t, ok)
	assert.Equal(t, model.SourceSlot, kind)

	slot, _, err := store.GetSlot(ctx, model.SlotID(instance, 0))
	require.NoError(t, err)
	assert.True(t, slot.Deposit.Equal(decimal.NewFromInt(70)))
}

func TestRunnerResumesFromCheckpoint(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.SaveState(ctx, "test", 15))

	chainClient := &fakeChain{latest: 20}
	runner, _, _ := newTestRunner(t, RunConfig{
		FromBlock: 1,
		Hubs:      []common.Address{hubAddr},
		BatchSize: 100,
	}, chainClient, store)
	require.NoError(t, runner.Run(ctx))

	require.NotEmpty(t, chainClient.calls)
	assert.Equal(t, BlockRange{From: 16, To: 20}, chainClient.calls[0])
}

func TestRunnerNothingToSync(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.SaveState(ctx, "test", 20))

	chainClient := &fakeChain{latest: 20}
	runner, _, _ := newTestRunner(t, RunConfig{Hubs: []common.Address{hubAddr}, BatchSize: 10}, chainClient, store)
	require.NoError(t, runner.Run(ctx))
	assert.Empty(t, chainClient.calls)
}

func TestRunnerRequiresRoots(t *testing.T) {
	runner, _, _ := newTestRunner(t, RunConfig{BatchSize: 10}, &fakeChain{}, memory.NewStore())
	assert.Error(t, runner.Run(context.Background()))
}
