package model

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackProposeConfirm(t *testing.T) {
	var track Track[uint64]
	require.Equal(t, PendingNone, track.State())

	replaced := track.Propose(500, 1700000100)
	assert.False(t, replaced)
	assert.Equal(t, PendingActive, track.State())
	require.NotNil(t, track.Value)
	assert.Equal(t, uint64(500), *track.Value)
	require.NotNil(t, track.ConfirmableAt)
	assert.Equal(t, uint64(1700000100), *track.ConfirmableAt)

	value, ok := track.Confirm()
	assert.True(t, ok)
	assert.Equal(t, uint64(500), value)
	assert.Equal(t, PendingNone, track.State())
	assert.Nil(t, track.Value)
	assert.Nil(t, track.ConfirmableAt)
}

func TestTrackCancelAndReplace(t *testing.T) {
	var track Track[common.Address]
	first := common.HexToAddress("0x1111111111111111111111111111111111111111")
	second := common.HexToAddress("0x2222222222222222222222222222222222222222")

	track.Propose(first, 10)
	assert.True(t, track.Propose(second, 20), "second proposal replaces the first")
	assert.Equal(t, second, *track.Value)

	assert.True(t, track.Cancel())
	assert.False(t, track.Pending)
	assert.Nil(t, track.Value)
	assert.False(t, track.Cancel(), "cancel on an idle track is a no-op")

	_, ok := track.Confirm()
	assert.False(t, ok)
}

func TestSlotVacateClearsBothTracks(t *testing.T) {
	slot := Slot{ID: "x-0"}
	slot.Occupy(common.HexToAddress("0x3333333333333333333333333333333333333333"))
	slot.PendingTax.Propose(250, 1)
	slot.PendingModule.Propose(common.HexToAddress("0x4444444444444444444444444444444444444444"), 1)
	require.False(t, slot.Vacant)

	slot.Vacate()
	assert.True(t, slot.Vacant)
	assert.Nil(t, slot.Occupant)
	assert.False(t, slot.PendingTax.Pending)
	assert.Nil(t, slot.PendingTax.Value)
	assert.False(t, slot.PendingModule.Pending)
	assert.Nil(t, slot.PendingModule.Value)
}

func TestSlotApplied(t *testing.T) {
	slot := Slot{}
	pos := EventPosition{BlockNumber: 5, TxIndex: 1, LogIndex: 2}
	assert.False(t, slot.Applied(pos))

	slot.LastEvent = &pos
	assert.True(t, slot.Applied(pos))
	assert.True(t, slot.Applied(EventPosition{BlockNumber: 5, TxIndex: 1, LogIndex: 1}))
	assert.False(t, slot.Applied(EventPosition{BlockNumber: 5, TxIndex: 1, LogIndex: 3}))
}
