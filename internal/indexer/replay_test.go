package indexer

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotScope/internal/contracts"
	"slotScope/internal/model"
	"slotScope/internal/projector"
	"slotScope/internal/registry"
	"slotScope/internal/storage"
	"slotScope/internal/storage/memory"
)

func TestReplayRebuildsView(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	records := []model.LogRecord{
		buildLogRecord(1, chainLog(t, hubAddr, contracts.HubABI, 10, 0, 0, "LandOpened", landAddr, owner), 1000, now),
		buildLogRecord(1, chainLog(t, landAddr, contracts.LandABI, 10, 1, 1, "SlotCreated", big.NewInt(0), slotParams()), 1000, now),
		buildLogRecord(1, chainLog(t, landAddr, contracts.LandABI, 12, 0, 0, "SlotPurchased", big.NewInt(0), buyer, big.NewInt(250)), 1024, now),
		// redelivered out of order
		buildLogRecord(1, chainLog(t, landAddr, contracts.LandABI, 11, 0, 0, "SlotReleased", big.NewInt(0)), 1012, now),
	}

	path := filepath.Join(t.TempDir(), "logs.jsonl")
	require.NoError(t, storage.NewLogArchive(path).PutLogBatch(records[:3]))
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = file.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, file.Close())
	require.NoError(t, storage.NewLogArchive(path).PutLogBatch(records[3:]))

	store := memory.NewStore()
	reg := registry.New()
	require.NoError(t, SeedRegistry(ctx, reg, store, []common.Address{hubAddr}, nil, 0))
	p, err := projector.New(store, reg, nil, nil)
	require.NoError(t, err)

	var reported []model.ProjectionError
	stats, err := Replay(ctx, p, path, func(perr model.ProjectionError) {
		reported = append(reported, perr)
	})
	require.NoError(t, err)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.Applied)
	assert.Equal(t, 2, stats.Failed)
	assert.EqualValues(t, 12, stats.LastBlock)
	require.Len(t, reported, 2)
	assert.Equal(t, 4, reported[0].Line)
	assert.EqualValues(t, 11, reported[1].BlockNumber)

	slot, ok, err := store.GetSlot(ctx, model.SlotID(landAddr, 0))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, buyer, *slot.Occupant)
}

func TestReplayMissingFile(t *testing.T) {
	p, err := projector.New(memory.NewStore(), registry.New(), nil, nil)
	require.NoError(t, err)
	_, err = Replay(context.Background(), p, filepath.Join(t.TempDir(), "absent.jsonl"), nil)
	assert.Error(t, err)
}
