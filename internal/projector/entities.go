package projector

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"slotScope/common/errs"
	"slotScope/internal/model"
	"slotScope/internal/storage"
)

// loadHub returns the hub at addr and whether it already existed.
func loadHub(ctx context.Context, tx storage.Tx, addr common.Address) (model.Hub, bool, error) {
	hub, ok, err := tx.GetHub(ctx, addr)
	if err != nil {
		return hub, false, err
	}
	if !ok {
		hub = model.Hub{Address: addr}
	}
	return hub, ok, nil
}

// ensureHub creates the emitting hub on its first event.
func ensureHub(ctx context.Context, tx storage.Tx, ev *Event) error {
	hub, ok, err := loadHub(ctx, tx, ev.Source)
	if err != nil || ok {
		return err
	}
	hub.UpdatedAt = ev.Timestamp()
	return tx.PutHub(ctx, hub)
}

// loadFactory returns the factory at addr and whether it already existed.
func loadFactory(ctx context.Context, tx storage.Tx, addr common.Address) (model.Factory, bool, error) {
	factory, ok, err := tx.GetFactory(ctx, addr)
	if err != nil {
		return factory, false, err
	}
	if !ok {
		factory = model.Factory{Address: addr}
	}
	return factory, ok, nil
}

// updateSlot loads a slot, guards against re-application and stores the result of fn.
func updateSlot(ctx context.Context, tx storage.Tx, ev *Event, id string, fn func(slot *model.Slot) error) error {
	slot, ok, err := tx.GetSlot(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errs.NotFound, "slot %s", id)
	}
	if slot.Applied(ev.Pos) {
		return errAlreadyApplied
	}
	if err := fn(&slot); err != nil {
		return err
	}
	pos := ev.Pos
	slot.LastEvent = &pos
	slot.UpdatedAt = ev.Timestamp()
	return tx.PutSlot(ctx, slot)
}

// touchCurrency makes sure a referenced currency has a record and tries to
// enrich it once.
func (p *Projector) touchCurrency(ctx context.Context, tx storage.Tx, addr common.Address) error {
	if addr == (common.Address{}) {
		return nil
	}
	currency, ok, err := tx.GetCurrency(ctx, addr)
	if err != nil {
		return err
	}
	if !ok {
		currency = model.Currency{Address: addr}
	}
	if !p.enrich(ctx, &currency) && ok {
		return nil
	}
	return tx.PutCurrency(ctx, currency)
}

// enrich fills the metadata of currency unless it already has a name or was
// attempted before. It reports whether anything was resolved.
func (p *Projector) enrich(ctx context.Context, currency *model.Currency) bool {
	if currency.Enriched() || p.resolver.Attempted(currency.Address) {
		return false
	}
	currency.CurrencyMetadata = p.resolver.Resolve(ctx, currency.Address)
	if !currency.Enriched() {
		p.logger.Debug("currency metadata unavailable", zap.String("currency", currency.Address.Hex()))
	}
	return true
}

// touchModule makes sure a referenced module has a record.
func touchModule(ctx context.Context, tx storage.Tx, addr common.Address) error {
	if addr == (common.Address{}) {
		return nil
	}
	_, ok, err := tx.GetModule(ctx, addr)
	if err != nil || ok {
		return err
	}
	return tx.PutModule(ctx, model.Module{Address: addr})
}
