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

// Occupancy and escrow transitions shared by land-managed and standalone slots.

func purchase(ctx context.Context, tx storage.Tx, ev *Event, slot *model.Slot, buyer common.Address, price *big.Int, previous *common.Address) error {
	if previous == nil {
		previous = slot.Occupant
	}
	slot.Occupy(buyer)
	slot.Price = contracts.Decimal(price)
	return record(ctx, tx, ev, slot, model.EventPurchase, func(r *model.SlotEvent) {
		r.Actor = account(buyer)
		r.Counterparty = previous
		r.Amount = amount(price)
	})
}

func vacate(ctx context.Context, tx storage.Tx, ev *Event, slot *model.Slot, kind model.SlotEventKind, actor, counterparty *common.Address, value *big.Int) error {
	slot.Vacate()
	return record(ctx, tx, ev, slot, kind, func(r *model.SlotEvent) {
		r.Actor = actor
		r.Counterparty = counterparty
		if value != nil {
			r.Amount = amount(value)
		}
	})
}

func updatePrice(ctx context.Context, tx storage.Tx, ev *Event, slot *model.Slot, oldPrice, newPrice *big.Int) error {
	slot.Price = contracts.Decimal(newPrice)
	return record(ctx, tx, ev, slot, model.EventPriceUpdate, func(r *model.SlotEvent) {
		r.Actor = slot.Occupant
		r.OldValue = amount(oldPrice)
		r.NewValue = amount(newPrice)
	})
}

func deposit(ctx context.Context, tx storage.Tx, ev *Event, slot *model.Slot, depositor common.Address, value *big.Int) error {
	old := slot.Deposit
	slot.Deposit = slot.Deposit.Add(contracts.Decimal(value))
	return record(ctx, tx, ev, slot, model.EventDeposit, func(r *model.SlotEvent) {
		r.Actor = account(depositor)
		r.Amount = amount(value)
		r.OldValue = amountOf(old)
		r.NewValue = amountOf(slot.Deposit)
	})
}

// buyoutEscrow replaces the escrow with the buyer's deposit. The previous
// escrow leaves with the previous occupant.
func buyoutEscrow(ctx context.Context, tx storage.Tx, ev *Event, slot *model.Slot, buyer common.Address, value *big.Int) error {
	slot.Deposit = contracts.Decimal(value)
	if !slot.Deposit.IsPositive() {
		return nil
	}
	return record(ctx, tx, ev, slot, model.EventDeposit, func(r *model.SlotEvent) {
		r.ID = secondaryID(ev, model.EventDeposit)
		r.Actor = account(buyer)
		r.Amount = amount(value)
		r.OldValue = amountOf(decimal.Zero)
		r.NewValue = amountOf(slot.Deposit)
	})
}

// withdraw never drives the deposit below zero.
func withdraw(ctx context.Context, tx storage.Tx, ev *Event, slot *model.Slot, to common.Address, value *big.Int) error {
	old := slot.Deposit
	slot.Deposit = decimal.Max(decimal.Zero, slot.Deposit.Sub(contracts.Decimal(value)))
	return record(ctx, tx, ev, slot, model.EventWithdrawal, func(r *model.SlotEvent) {
		r.Actor = account(to)
		r.Amount = amount(value)
		r.OldValue = amountOf(old)
		r.NewValue = amountOf(slot.Deposit)
	})
}

func settle(ctx context.Context, tx storage.Tx, ev *Event, slot *model.Slot, taxPaid, depositRemaining *big.Int) error {
	old := slot.Deposit
	slot.Deposit = contracts.Decimal(depositRemaining)
	slot.TaxPaid = slot.TaxPaid.Add(contracts.Decimal(taxPaid))
	return record(ctx, tx, ev, slot, model.EventSettlement, func(r *model.SlotEvent) {
		r.Actor = slot.Occupant
		r.Amount = amount(taxPaid)
		r.OldValue = amountOf(old)
		r.NewValue = amountOf(slot.Deposit)
	})
}

func collectTax(ctx context.Context, tx storage.Tx, ev *Event, slot *model.Slot, collector common.Address, value *big.Int) error {
	slot.CollectedTax = slot.CollectedTax.Add(contracts.Decimal(value))
	return record(ctx, tx, ev, slot, model.EventTaxCollected, func(r *model.SlotEvent) {
		r.Actor = account(collector)
		r.Counterparty = slot.Occupant
		r.Amount = amount(value)
	})
}
