package projector

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"

	"slotScope/common/errs"
	"slotScope/internal/contracts"
	"slotScope/internal/model"
	"slotScope/internal/storage"
)

// Land-kind events address a slot of the emitting land by index.

func landSlot(ev *Event, slotID *big.Int) string {
	return model.SlotID(ev.Source, contracts.Uint64(slotID))
}

func (p *Projector) onSlotCreated(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.SlotCreated)
	if _, ok, err := tx.GetLand(ctx, ev.Source); err != nil {
		return err
	} else if !ok {
		return errors.Wrapf(errs.NotFound, "land %s", ev.Source.Hex())
	}

	id := landSlot(ev, e.SlotId)
	existing, ok, err := tx.GetSlot(ctx, id)
	if err != nil {
		return err
	}
	if ok && existing.Applied(ev.Pos) {
		return errAlreadyApplied
	}

	pos := ev.Pos
	params := e.Params
	slot := model.Slot{
		ID:                 id,
		Land:               ev.Source,
		Index:              contracts.Uint64(e.SlotId),
		Vacant:             true,
		Currency:           params.Currency,
		BasePrice:          contracts.Decimal(params.BasePrice),
		Price:              contracts.Decimal(params.Price),
		Active:             true,
		TaxPercentage:      contracts.Uint64(params.TaxPercentage),
		MaxTaxPercentage:   contracts.Uint64(params.MaxTaxPercentage),
		MinTaxUpdatePeriod: contracts.Uint64(params.MinTaxUpdatePeriod),
		Module:             params.Module,
		CreatedAt:          ev.Timestamp(),
		UpdatedAt:          ev.Timestamp(),
		LastEvent:          &pos,
	}
	if err := tx.PutSlot(ctx, slot); err != nil {
		return err
	}
	if err := p.touchCurrency(ctx, tx, params.Currency); err != nil {
		return err
	}
	return touchModule(ctx, tx, params.Module)
}

func (p *Projector) onSlotPurchased(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.SlotPurchased)
	return updateSlot(ctx, tx, ev, landSlot(ev, e.SlotId), func(slot *model.Slot) error {
		return purchase(ctx, tx, ev, slot, e.NewOccupant, e.Price, nil)
	})
}

func (p *Projector) onSlotReleased(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.SlotReleased)
	return updateSlot(ctx, tx, ev, landSlot(ev, e.SlotId), func(slot *model.Slot) error {
		return vacate(ctx, tx, ev, slot, model.EventRelease, slot.Occupant, nil, nil)
	})
}

func (p *Projector) onSlotLiquidated(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.SlotLiquidated)
	return updateSlot(ctx, tx, ev, landSlot(ev, e.SlotId), func(slot *model.Slot) error {
		return vacate(ctx, tx, ev, slot, model.EventLiquidation, account(e.Liquidator), account(e.Occupant), e.Bounty)
	})
}

func (p *Projector) onLandPriceUpdated(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.LandPriceUpdated)
	return updateSlot(ctx, tx, ev, landSlot(ev, e.SlotId), func(slot *model.Slot) error {
		return updatePrice(ctx, tx, ev, slot, e.OldPrice, e.NewPrice)
	})
}

func (p *Projector) onTaxRateUpdateProposed(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.TaxRateUpdateProposed)
	return updateSlot(ctx, tx, ev, landSlot(ev, e.SlotId), func(slot *model.Slot) error {
		p.proposeTax(ev, slot, contracts.Uint64(e.NewPercentage), contracts.Uint64(e.ConfirmableAt))
		return nil
	})
}

func (p *Projector) onTaxRateUpdateConfirmed(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.TaxRateUpdateConfirmed)
	return updateSlot(ctx, tx, ev, landSlot(ev, e.SlotId), func(slot *model.Slot) error {
		return p.confirmTax(ctx, tx, ev, slot, contracts.Uint64(e.NewPercentage))
	})
}

func (p *Projector) onTaxRateUpdateCancelled(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.TaxRateUpdateCancelled)
	return updateSlot(ctx, tx, ev, landSlot(ev, e.SlotId), func(slot *model.Slot) error {
		p.cancelTax(ev, slot)
		return nil
	})
}

func (p *Projector) onSlotActivated(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.SlotActivated)
	return updateSlot(ctx, tx, ev, landSlot(ev, e.SlotId), func(slot *model.Slot) error {
		slot.Active = true
		return nil
	})
}

func (p *Projector) onSlotDeactivated(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.SlotDeactivated)
	return updateSlot(ctx, tx, ev, landSlot(ev, e.SlotId), func(slot *model.Slot) error {
		slot.Active = false
		return nil
	})
}

func (p *Projector) onSlotSettingsUpdated(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.SlotSettingsUpdated)
	return updateSlot(ctx, tx, ev, landSlot(ev, e.SlotId), func(slot *model.Slot) error {
		slot.BasePrice = contracts.Decimal(e.BasePrice)
		slot.Currency = e.Currency
		slot.MaxTaxPercentage = contracts.Uint64(e.MaxTaxPercentage)
		slot.Module = e.Module
		if err := p.touchCurrency(ctx, tx, e.Currency); err != nil {
			return err
		}
		return touchModule(ctx, tx, e.Module)
	})
}

func (p *Projector) onLandDeposited(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.LandDeposited)
	return updateSlot(ctx, tx, ev, landSlot(ev, e.SlotId), func(slot *model.Slot) error {
		return deposit(ctx, tx, ev, slot, e.Depositor, e.Amount)
	})
}

func (p *Projector) onLandWithdrawn(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.LandWithdrawn)
	return updateSlot(ctx, tx, ev, landSlot(ev, e.SlotId), func(slot *model.Slot) error {
		return withdraw(ctx, tx, ev, slot, e.Account, e.Amount)
	})
}

func (p *Projector) onLandSettled(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.LandSettled)
	return updateSlot(ctx, tx, ev, landSlot(ev, e.SlotId), func(slot *model.Slot) error {
		return settle(ctx, tx, ev, slot, e.TaxPaid, e.DepositRemaining)
	})
}

func (p *Projector) onLandTaxCollected(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.LandTaxCollected)
	return updateSlot(ctx, tx, ev, landSlot(ev, e.SlotId), func(slot *model.Slot) error {
		return collectTax(ctx, tx, ev, slot, e.Collector, e.Amount)
	})
}
