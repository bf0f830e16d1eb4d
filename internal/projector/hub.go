package projector

import (
	"context"

	"go.uber.org/zap"

	"slotScope/internal/contracts"
	"slotScope/internal/model"
	"slotScope/internal/storage"
)

func (p *Projector) onHubSettingsUpdated(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.HubSettingsUpdated)
	hub, _, err := loadHub(ctx, tx, ev.Source)
	if err != nil {
		return err
	}

	s := e.Settings
	hub.HubSettings = model.HubSettings{
		ProtocolFeeBps:            contracts.Uint64(s.ProtocolFeeBps),
		ProtocolFeeRecipient:      s.ProtocolFeeRecipient,
		SlotCreationPrice:         contracts.Decimal(s.SlotCreationPrice),
		DefaultCurrency:           s.DefaultCurrency,
		DefaultSlotCount:          contracts.Uint64(s.DefaultSlotCount),
		DefaultPrice:              contracts.Decimal(s.DefaultPrice),
		DefaultTaxPercentage:      contracts.Uint64(s.DefaultTaxPercentage),
		DefaultMaxTaxPercentage:   contracts.Uint64(s.DefaultMaxTaxPercentage),
		DefaultMinTaxUpdatePeriod: contracts.Uint64(s.DefaultMinTaxUpdatePeriod),
		DefaultModule:             s.DefaultModule,
	}
	hub.UpdatedAt = ev.Timestamp()
	if err := tx.PutHub(ctx, hub); err != nil {
		return err
	}
	if err := p.touchCurrency(ctx, tx, s.DefaultCurrency); err != nil {
		return err
	}
	return touchModule(ctx, tx, s.DefaultModule)
}

func (p *Projector) onLandOpened(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.LandOpened)
	if err := ensureHub(ctx, tx, ev); err != nil {
		return err
	}

	// A land is created once; replays keep the original record.
	if _, ok, err := tx.GetLand(ctx, e.Land); err != nil || ok {
		if ok {
			ev.discover(e.Land, model.SourceLand)
		}
		return err
	}

	hubAddr := ev.Source
	land := model.Land{
		Address:      e.Land,
		Hub:          &hubAddr,
		Owner:        e.Account,
		CreatedAt:    ev.Timestamp(),
		CreatedBlock: ev.Log.BlockNumber,
		CreatedTx:    ev.Log.TxHash,
	}
	if err := tx.PutLand(ctx, land); err != nil {
		return err
	}
	ev.discover(e.Land, model.SourceLand)
	return nil
}

func (p *Projector) onModuleAllowedUpdated(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.ModuleAllowedUpdated)
	if err := ensureHub(ctx, tx, ev); err != nil {
		return err
	}
	return tx.PutModule(ctx, model.Module{
		Address: e.Module,
		Allowed: e.Allowed,
		Name:    e.Name,
		Version: e.Version,
	})
}

func (p *Projector) onCurrencyAllowedUpdated(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.CurrencyAllowedUpdated)
	if err := ensureHub(ctx, tx, ev); err != nil {
		return err
	}
	currency, ok, err := tx.GetCurrency(ctx, e.Currency)
	if err != nil {
		return err
	}
	if !ok {
		currency = model.Currency{Address: e.Currency}
	}
	currency.Allowed = e.Allowed
	p.enrich(ctx, &currency)
	return tx.PutCurrency(ctx, currency)
}

func (p *Projector) onSlotsDeployed(ctx context.Context, tx storage.Tx, ev *Event) error {
	e := ev.Payload.(*contracts.SlotsDeployed)
	factory, existed, err := loadFactory(ctx, tx, ev.Source)
	if err != nil {
		return err
	}
	if factory.Applied(ev.Pos) {
		return errAlreadyApplied
	}
	if !existed {
		if admin, ok := p.resolver.FactoryAdmin(ctx, ev.Source); ok {
			factory.Admin = admin
		}
	}
	factory.InstanceCount++
	pos := ev.Pos
	factory.LastEvent = &pos
	if err := tx.PutFactory(ctx, factory); err != nil {
		return err
	}

	if _, ok, err := tx.GetLand(ctx, e.Instance); err != nil {
		return err
	} else if ok {
		p.logger.Warn("instance already known", zap.String("instance", e.Instance.Hex()))
		ev.discover(e.Instance, model.SourceSlot)
		return nil
	}

	factoryAddr := ev.Source
	land := model.Land{
		Address:      e.Instance,
		Factory:      &factoryAddr,
		Owner:        e.Recipient,
		CreatedAt:    ev.Timestamp(),
		CreatedBlock: ev.Log.BlockNumber,
		CreatedTx:    ev.Log.TxHash,
	}
	if err := tx.PutLand(ctx, land); err != nil {
		return err
	}

	price := contracts.Decimal(e.InitParams.InitialPrice)
	basePrice := contracts.Decimal(e.Config.BasePrice)
	if price.IsZero() {
		price = basePrice
	}
	// LastEvent stays unset: only the instance's own logs order its slot, and
	// its constructor may log ahead of this event in the same transaction.
	slot := model.Slot{
		ID:                   model.SlotID(e.Instance, 0),
		Land:                 e.Instance,
		Index:                0,
		Vacant:               true,
		Currency:             e.Currency,
		BasePrice:            basePrice,
		Price:                price,
		Active:               true,
		TaxPercentage:        contracts.Uint64(e.Config.TaxPercentage),
		MaxTaxPercentage:     contracts.Uint64(e.Config.MaxTaxPercentage),
		MinTaxUpdatePeriod:   contracts.Uint64(e.Config.MinTaxUpdatePeriod),
		Module:               e.Config.Module,
		LiquidationBountyBps: contracts.Uint64(e.InitParams.LiquidationBountyBps),
		CreatedAt:            ev.Timestamp(),
		UpdatedAt:            ev.Timestamp(),
	}
	if err := tx.PutSlot(ctx, slot); err != nil {
		return err
	}
	if err := p.touchCurrency(ctx, tx, e.Currency); err != nil {
		return err
	}
	if err := touchModule(ctx, tx, e.Config.Module); err != nil {
		return err
	}
	ev.discover(e.Instance, model.SourceSlot)
	return nil
}
