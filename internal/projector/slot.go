package projector

import (
	"context"

	"slotScope/internal/contracts"
	"slotScope/internal/model"
	"slotScope/internal/storage"
)

// Slot-kind events come from a factory-deployed instance holding a single slot.

func instanceSlot(ev *Event) string {
	return model.SlotID(ev.Source, 0)
}

func (p *Projector) onBought(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.Bought)
	return updateSlot(ctx, tx, ev, instanceSlot(ev), func(slot *model.Slot) error {
		if err := purchase(ctx, tx, ev, slot, e.Buyer, e.Price, account(e.PreviousOccupant)); err != nil {
			return err
		}
		return buyoutEscrow(ctx, tx, ev, slot, e.Buyer, e.Deposit)
	})
}

func (p *Projector) onReleased(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.Released)
	return updateSlot(ctx, tx, ev, instanceSlot(ev), func(slot *model.Slot) error {
		return vacate(ctx, tx, ev, slot, model.EventRelease, account(e.Occupant), nil, e.Refund)
	})
}

func (p *Projector) onLiquidated(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.Liquidated)
	return updateSlot(ctx, tx, ev, instanceSlot(ev), func(slot *model.Slot) error {
		return vacate(ctx, tx, ev, slot, model.EventLiquidation, account(e.Liquidator), account(e.Occupant), e.Bounty)
	})
}

func (p *Projector) onPriceUpdated(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.PriceUpdated)
	return updateSlot(ctx, tx, ev, instanceSlot(ev), func(slot *model.Slot) error {
		return updatePrice(ctx, tx, ev, slot, e.OldPrice, e.NewPrice)
	})
}

func (p *Projector) onDeposited(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.Deposited)
	return updateSlot(ctx, tx, ev, instanceSlot(ev), func(slot *model.Slot) error {
		return deposit(ctx, tx, ev, slot, e.Depositor, e.Amount)
	})
}

func (p *Projector) onWithdrawn(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.Withdrawn)
	return updateSlot(ctx, tx, ev, instanceSlot(ev), func(slot *model.Slot) error {
		return withdraw(ctx, tx, ev, slot, e.Occupant, e.Amount)
	})
}

func (p *Projector) onTaxCollected(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.TaxCollected)
	return updateSlot(ctx, tx, ev, instanceSlot(ev), func(slot *model.Slot) error {
		return collectTax(ctx, tx, ev, slot, e.Collector, e.Amount)
	})
}

func (p *Projector) onSettled(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.Settled)
	return updateSlot(ctx, tx, ev, instanceSlot(ev), func(slot *model.Slot) error {
		return settle(ctx, tx, ev, slot, e.TaxPaid, e.DepositRemaining)
	})
}

func (p *Projector) onTaxUpdateProposed(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.TaxUpdateProposed)
	return updateSlot(ctx, tx, ev, instanceSlot(ev), func(slot *model.Slot) error {
		p.proposeTax(ev, slot, contracts.Uint64(e.NewPercentage), contracts.Uint64(e.ConfirmableAt))
		return nil
	})
}

func (p *Projector) onModuleUpdateProposed(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.ModuleUpdateProposed)
	return updateSlot(ctx, tx, ev, instanceSlot(ev), func(slot *model.Slot) error {
		p.proposeModule(ev, slot, e.NewModule, contracts.Uint64(e.ConfirmableAt))
		return nil
	})
}

func (p *Projector) onPendingUpdateCancelled(ctx context.Context, tx storage.Tx, ev *Event) error {
	return updateSlot(ctx, tx, ev, instanceSlot(ev), func(slot *model.Slot) error {
		p.cancelPending(ev, slot)
		return nil
	})
}

func (p *Projector) onPendingUpdateApplied(ctx context.Context, tx storage.Tx, ev *Event) error {
	return updateSlot(ctx, tx, ev, instanceSlot(ev), func(slot *model.Slot) error {
		return p.applyPending(ctx, tx, ev, slot)
	})
}

func (p *Projector) onLiquidationBountyUpdated(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.LiquidationBountyUpdated)
	return updateSlot(ctx, tx, ev, instanceSlot(ev), func(slot *model.Slot) error {
		slot.LiquidationBountyBps = contracts.Uint64(e.NewBps)
		return nil
	})
}
