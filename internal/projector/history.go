package projector

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"slotScope/internal/contracts"
	"slotScope/internal/model"
	"slotScope/internal/storage"
)

// record appends one history record for slot. The id is derived from the log,
// so a second record from the same log needs a distinct suffix.
func record(ctx context.Context, tx storage.Tx, ev *Event, slot *model.Slot, kind model.SlotEventKind, fill func(r *model.SlotEvent)) error {
	r := model.SlotEvent{
		ID:          model.EventID(ev.Log.TxHash, ev.Log.LogIndex),
		Kind:        kind,
		SlotID:      slot.ID,
		Land:        slot.Land,
		BlockNumber: ev.Log.BlockNumber,
		Timestamp:   ev.Timestamp(),
		TxHash:      ev.Log.TxHash,
		LogIndex:    ev.Log.LogIndex,
	}
	if fill != nil {
		fill(&r)
	}
	return tx.InsertEvent(ctx, r)
}

// secondaryID names an extra record written for the same log as its primary one.
func secondaryID(ev *Event, kind model.SlotEventKind) string {
	return model.EventID(ev.Log.TxHash, ev.Log.LogIndex) + "-" + string(kind)
}

func amount(v *big.Int) decimal.NullDecimal {
	return decimal.NewNullDecimal(contracts.Decimal(v))
}

func amountOf(v decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(v)
}

func uintAmount(v uint64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0))
}

// account returns addr, or nil for the zero address.
func account(addr common.Address) *common.Address {
	if addr == (common.Address{}) {
		return nil
	}
	a := addr
	return &a
}
