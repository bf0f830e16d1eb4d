package projector

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"

	"slotScope/internal/contracts"
	"slotScope/internal/model"
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
	liquidator  = common.HexToAddress("0x3000000000000000000000000000000000000003")
	usdc        = common.HexToAddress("0x4000000000000000000000000000000000000001")
	moduleA     = common.HexToAddress("0x5000000000000000000000000000000000000001")
	moduleB     = common.HexToAddress("0x5000000000000000000000000000000000000002")
)

type harness struct {
	t         *testing.T
	ctx       context.Context
	store     *memory.Store
	registry  *registry.Registry
	projector *Projector
	block     uint64
	logIndex  uint64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.NewStore()
	reg := registry.New()
	reg.Register(hubAddr, model.SourceHub, 0)
	reg.Register(factoryAddr, model.SourceFactory, 0)

	p, err := New(store, reg, nil, nil)
	require.NoError(t, err)
	return &harness{t: t, ctx: context.Background(), store: store, registry: reg, projector: p, block: 100}
}

// log builds the next log of source in a fresh block.
func (h *harness) log(source common.Address, load func() (abi.ABI, error), name string, args ...interface{}) model.LogRecord {
	h.t.Helper()
	parsed, err := load()
	require.NoError(h.t, err)
	topics, data, err := contracts.EncodeEvent(parsed, name, args...)
	require.NoError(h.t, err)

	h.block++
	h.logIndex++
	hexTopics := make([]string, 0, len(topics))
	for _, topic := range topics {
		hexTopics = append(hexTopics, topic.Hex())
	}
	return model.LogRecord{
		ChainID:     1,
		BlockNumber: h.block,
		TxHash:      common.BigToHash(new(big.Int).SetUint64(h.block)).Hex(),
		TxIndex:     0,
		LogIndex:    h.logIndex,
		Address:     source.Hex(),
		Topics:      hexTopics,
		Data:        hexutil.Encode(data),
		Timestamp:   1700000000 + h.block,
	}
}

// apply projects a log, expects outcome and checks the slot invariants afterwards.
func (h *harness) apply(log model.LogRecord, want Outcome) {
	h.t.Helper()
	got, err := h.projector.Apply(h.ctx, log)
	require.NoError(h.t, err)
	require.Equal(h.t, want, got)
	h.checkInvariants()
}

func (h *harness) emit(source common.Address, load func() (abi.ABI, error), name string, args ...interface{}) model.LogRecord {
	h.t.Helper()
	log := h.log(source, load, name, args...)
	h.apply(log, Applied)
	return log
}

func (h *harness) slot(land common.Address, index uint64) model.Slot {
	h.t.Helper()
	slot, ok, err := h.store.GetSlot(h.ctx, model.SlotID(land, index))
	require.NoError(h.t, err)
	require.True(h.t, ok, "slot %s-%d", land.Hex(), index)
	return slot
}

func (h *harness) events(slotID string) []model.SlotEvent {
	h.t.Helper()
	events, err := h.store.ListEvents(h.ctx, storage.EventFilter{SlotID: slotID})
	require.NoError(h.t, err)
	return events
}

func (h *harness) checkInvariants() {
	h.t.Helper()
	lands, err := h.store.ListLands(h.ctx, storage.LandFilter{Page: storage.Page{Limit: storage.MaxLimit}})
	require.NoError(h.t, err)
	for _, land := range lands {
		slots, err := h.store.ListSlots(h.ctx, storage.SlotFilter{Land: land.Address})
		require.NoError(h.t, err)
		for _, slot := range slots {
			require.Equal(h.t, slot.Occupant == nil, slot.Vacant, "vacancy of %s", slot.ID)
			require.Equal(h.t, slot.PendingTax.Pending, slot.PendingTax.Value != nil, "pending tax of %s", slot.ID)
			require.Equal(h.t, slot.PendingModule.Pending, slot.PendingModule.Value != nil, "pending module of %s", slot.ID)
		}
	}
}

// openLand opens landAddr on the hub and creates slot 0 priced 100 with base price 80.
func (h *harness) openLand() {
	h.t.Helper()
	h.emit(hubAddr, contracts.HubABI, "LandOpened", landAddr, owner)
	h.emit(landAddr, contracts.LandABI, "SlotCreated", num(0), contracts.SlotParams{
		Currency:           usdc,
		BasePrice:          num(80),
		Price:              num(100),
		TaxPercentage:      num(100),
		MaxTaxPercentage:   num(1000),
		MinTaxUpdatePeriod: num(3600),
		Module:             moduleA,
	})
}

// deployInstance deploys instance through the factory with a base price of 50.
func (h *harness) deployInstance() model.LogRecord {
	h.t.Helper()
	return h.emit(factoryAddr, contracts.FactoryABI, "SlotsDeployed", instance, owner, usdc,
		contracts.SlotsConfig{
			BasePrice:          num(50),
			TaxPercentage:      num(200),
			MaxTaxPercentage:   num(2000),
			MinTaxUpdatePeriod: num(60),
			Module:             moduleA,
		},
		contracts.SlotsInitParams{
			InitialPrice:         num(0),
			LiquidationBountyBps: num(500),
		},
	)
}

func num(n int64) *big.Int {
	return big.NewInt(n)
}
