package projector

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"slotScope/common/errs"
	"slotScope/internal/model"
	"slotScope/internal/storage"
)

// Pending tax-rate and module changes. The chain enforces timelocks and the
// single-proposal rule; these transitions mirror what it emitted.

func (p *Projector) proposeTax(ev *Event, slot *model.Slot, percentage, confirmableAt uint64) {
	if slot.PendingTax.Propose(percentage, confirmableAt) {
		p.logger.Warn("tax proposal replaced a pending one",
			zap.String("slot", slot.ID),
			zap.Stringer("position", ev.Pos),
			zap.Error(errs.AlreadyPending),
		)
	}
}

func (p *Projector) proposeModule(ev *Event, slot *model.Slot, module common.Address, confirmableAt uint64) {
	if slot.PendingModule.Propose(module, confirmableAt) {
		p.logger.Warn("module proposal replaced a pending one",
			zap.String("slot", slot.ID),
			zap.Stringer("position", ev.Pos),
			zap.Error(errs.AlreadyPending),
		)
	}
}

// confirmTax makes percentage live. The emitted value wins over the pending one.
func (p *Projector) confirmTax(ctx context.Context, tx storage.Tx, ev *Event, slot *model.Slot, percentage uint64) error {
	pending, ok := slot.PendingTax.Confirm()
	switch {
	case !ok:
		p.logger.Warn("tax confirmed without a pending proposal", zap.String("slot", slot.ID), zap.Stringer("position", ev.Pos))
	case pending != percentage:
		p.logger.Warn("confirmed tax differs from pending proposal",
			zap.String("slot", slot.ID),
			zap.Uint64("pending", pending),
			zap.Uint64("confirmed", percentage),
		)
	}
	old := slot.TaxPercentage
	slot.TaxPercentage = percentage
	return record(ctx, tx, ev, slot, model.EventTaxRateChange, func(r *model.SlotEvent) {
		r.Actor = slot.Occupant
		r.OldValue = uintAmount(old)
		r.NewValue = uintAmount(percentage)
	})
}

func (p *Projector) cancelTax(ev *Event, slot *model.Slot) {
	if !slot.PendingTax.Cancel() {
		p.logger.Debug("tax cancel without a pending proposal", zap.String("slot", slot.ID), zap.Stringer("position", ev.Pos))
	}
}

func (p *Projector) applyModule(ctx context.Context, tx storage.Tx, ev *Event, slot *model.Slot, id string) error {
	module, ok := slot.PendingModule.Confirm()
	if !ok {
		return nil
	}
	old := slot.Module
	slot.Module = module
	if err := touchModule(ctx, tx, module); err != nil {
		return err
	}
	return record(ctx, tx, ev, slot, model.EventModuleChange, func(r *model.SlotEvent) {
		if id != "" {
			r.ID = id
		}
		r.Actor = slot.Occupant
		r.OldModule = account(old)
		r.NewModule = account(module)
	})
}

// applyPending makes every pending track of slot live. When both tracks are
// pending the module record gets a suffixed id.
func (p *Projector) applyPending(ctx context.Context, tx storage.Tx, ev *Event, slot *model.Slot) error {
	taxPending := slot.PendingTax.Pending && slot.PendingTax.Value != nil
	if !taxPending && !slot.PendingModule.Pending {
		p.logger.Warn("pending update applied with nothing pending", zap.String("slot", slot.ID), zap.Stringer("position", ev.Pos))
		return nil
	}
	if taxPending {
		if err := p.confirmTax(ctx, tx, ev, slot, *slot.PendingTax.Value); err != nil {
			return err
		}
	}
	moduleID := ""
	if taxPending {
		moduleID = secondaryID(ev, model.EventModuleChange)
	}
	return p.applyModule(ctx, tx, ev, slot, moduleID)
}

func (p *Projector) cancelPending(ev *Event, slot *model.Slot) {
	tax := slot.PendingTax.Cancel()
	module := slot.PendingModule.Cancel()
	if !tax && !module {
		p.logger.Debug("pending cancel with nothing pending", zap.String("slot", slot.ID), zap.Stringer("position", ev.Pos))
	}
}
