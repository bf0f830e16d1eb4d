package postgres

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"

	"slotScope/internal/model"
)

const (
	hubColumns = `address, protocol_fee_bps, protocol_fee_recipient, slot_creation_price, default_currency,
		default_slot_count, default_price, default_tax_percentage, default_max_tax_percentage,
		default_min_tax_update_period, default_module, updated_at`
	factoryColumns  = `address, admin, instance_count, last_block, last_tx_index, last_log_index`
	landColumns     = `address, hub, factory, owner, created_at, created_block, created_tx`
	slotColumns     = `id, land, slot_index, occupant, vacant, currency, base_price, price, active,
		tax_percentage, max_tax_percentage, min_tax_update_period, module,
		pending_tax, pending_tax_value, pending_tax_confirmable_at,
		pending_module, pending_module_value, pending_module_confirmable_at,
		liquidation_bounty_bps, deposit, collected_tax, tax_paid, created_at, updated_at,
		last_block, last_tx_index, last_log_index`
	eventColumns = `id, kind, slot_id, land, actor, counterparty, amount, old_value, new_value,
		old_module, new_module, block_number, "timestamp", tx_hash, log_index`
	currencyColumns = `address, allowed, name, symbol, decimals, underlying, underlying_name,
		underlying_symbol, underlying_decimals`
	moduleColumns = `address, allowed, name, version`
)

func scanHub(row pgx.Row) (model.Hub, error) {
	var (
		hub                                                      model.Hub
		address, recipient, currency, module                     string
		feeBps, slotCount, taxPct, maxTaxPct, minPeriod, updated int64
	)
	err := row.Scan(
		&address, &feeBps, &recipient, &hub.SlotCreationPrice, &currency,
		&slotCount, &hub.DefaultPrice, &taxPct, &maxTaxPct,
		&minPeriod, &module, &updated,
	)
	if err != nil {
		return hub, err
	}
	hub.Address = common.HexToAddress(address)
	hub.ProtocolFeeBps = uint64(feeBps)
	hub.ProtocolFeeRecipient = common.HexToAddress(recipient)
	hub.DefaultCurrency = common.HexToAddress(currency)
	hub.DefaultSlotCount = uint64(slotCount)
	hub.DefaultTaxPercentage = uint64(taxPct)
	hub.DefaultMaxTaxPercentage = uint64(maxTaxPct)
	hub.DefaultMinTaxUpdatePeriod = uint64(minPeriod)
	hub.DefaultModule = common.HexToAddress(module)
	hub.UpdatedAt = uint64(updated)
	return hub, nil
}

func scanFactory(row pgx.Row) (model.Factory, error) {
	var (
		factory                  model.Factory
		address                  string
		admin                    *string
		count                    int64
		block, txIndex, logIndex *int64
	)
	if err := row.Scan(&address, &admin, &count, &block, &txIndex, &logIndex); err != nil {
		return factory, err
	}
	factory.Address = common.HexToAddress(address)
	factory.Admin = parseAddr(admin)
	factory.InstanceCount = uint64(count)
	factory.LastEvent = position(block, txIndex, logIndex)
	return factory, nil
}

func scanLand(row pgx.Row) (model.Land, error) {
	var (
		land                    model.Land
		address, owner          string
		hub, factory            *string
		createdAt, createdBlock int64
	)
	if err := row.Scan(&address, &hub, &factory, &owner, &createdAt, &createdBlock, &land.CreatedTx); err != nil {
		return land, err
	}
	land.Address = common.HexToAddress(address)
	land.Hub = parseAddr(hub)
	land.Factory = parseAddr(factory)
	land.Owner = common.HexToAddress(owner)
	land.CreatedAt = uint64(createdAt)
	land.CreatedBlock = uint64(createdBlock)
	return land, nil
}

func scanSlot(row pgx.Row) (model.Slot, error) {
	var (
		slot                                        model.Slot
		land, currency, module                      string
		occupant, pendingModule                     *string
		index, taxPct, maxTaxPct, minPeriod, bounty int64
		createdAt, updatedAt                        int64
		pendingTax, pendingTaxAt, pendingModuleAt   *int64
		block, txIndex, logIndex                    *int64
	)
	err := row.Scan(
		&slot.ID, &land, &index, &occupant, &slot.Vacant, &currency, &slot.BasePrice, &slot.Price, &slot.Active,
		&taxPct, &maxTaxPct, &minPeriod, &module,
		&slot.PendingTax.Pending, &pendingTax, &pendingTaxAt,
		&slot.PendingModule.Pending, &pendingModule, &pendingModuleAt,
		&bounty, &slot.Deposit, &slot.CollectedTax, &slot.TaxPaid, &createdAt, &updatedAt,
		&block, &txIndex, &logIndex,
	)
	if err != nil {
		return slot, err
	}
	slot.Land = common.HexToAddress(land)
	slot.Index = uint64(index)
	slot.Occupant = parseAddr(occupant)
	slot.Currency = common.HexToAddress(currency)
	slot.TaxPercentage = uint64(taxPct)
	slot.MaxTaxPercentage = uint64(maxTaxPct)
	slot.MinTaxUpdatePeriod = uint64(minPeriod)
	slot.Module = common.HexToAddress(module)
	slot.PendingTax.Value = parseUint(pendingTax)
	slot.PendingTax.ConfirmableAt = parseUint(pendingTaxAt)
	slot.PendingModule.Value = parseAddr(pendingModule)
	slot.PendingModule.ConfirmableAt = parseUint(pendingModuleAt)
	slot.LiquidationBountyBps = uint64(bounty)
	slot.CreatedAt = uint64(createdAt)
	slot.UpdatedAt = uint64(updatedAt)
	slot.LastEvent = position(block, txIndex, logIndex)
	return slot, nil
}

func scanEvent(row pgx.Row) (model.SlotEvent, error) {
	var (
		event                                     model.SlotEvent
		kind, land                                string
		actor, counterparty, oldModule, newModule *string
		block, timestamp, logIndex                int64
	)
	err := row.Scan(
		&event.ID, &kind, &event.SlotID, &land, &actor, &counterparty,
		&event.Amount, &event.OldValue, &event.NewValue,
		&oldModule, &newModule, &block, &timestamp, &event.TxHash, &logIndex,
	)
	if err != nil {
		return event, err
	}
	event.Kind = model.SlotEventKind(kind)
	event.Land = common.HexToAddress(land)
	event.Actor = parseAddr(actor)
	event.Counterparty = parseAddr(counterparty)
	event.OldModule = parseAddr(oldModule)
	event.NewModule = parseAddr(newModule)
	event.BlockNumber = uint64(block)
	event.Timestamp = uint64(timestamp)
	event.LogIndex = uint64(logIndex)
	return event, nil
}

func scanCurrency(row pgx.Row) (model.Currency, error) {
	var (
		currency                     model.Currency
		address                      string
		underlying                   *string
		decimals, underlyingDecimals *int16
	)
	err := row.Scan(
		&address, &currency.Allowed, &currency.Name, &currency.Symbol, &decimals,
		&underlying, &currency.UnderlyingName, &currency.UnderlyingSymbol, &underlyingDecimals,
	)
	if err != nil {
		return currency, err
	}
	currency.Address = common.HexToAddress(address)
	currency.Decimals = parseSmallint(decimals)
	currency.Underlying = parseAddr(underlying)
	currency.UnderlyingDecimals = parseSmallint(underlyingDecimals)
	return currency, nil
}

func scanModule(row pgx.Row) (model.Module, error) {
	var (
		module  model.Module
		address string
	)
	if err := row.Scan(&address, &module.Allowed, &module.Name, &module.Version); err != nil {
		return module, err
	}
	module.Address = common.HexToAddress(address)
	return module, nil
}

func hexAddr(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

func nullAddr(addr *common.Address) *string {
	if addr == nil {
		return nil
	}
	v := hexAddr(*addr)
	return &v
}

func parseAddr(v *string) *common.Address {
	if v == nil {
		return nil
	}
	addr := common.HexToAddress(*v)
	return &addr
}

func nullInt(v *uint64) *int64 {
	if v == nil {
		return nil
	}
	i := int64(*v)
	return &i
}

func parseUint(v *int64) *uint64 {
	if v == nil {
		return nil
	}
	u := uint64(*v)
	return &u
}

func nullSmallint(v *uint8) *int16 {
	if v == nil {
		return nil
	}
	i := int16(*v)
	return &i
}

func parseSmallint(v *int16) *uint8 {
	if v == nil {
		return nil
	}
	u := uint8(*v)
	return &u
}

func positionArgs(pos *model.EventPosition) (block, txIndex, logIndex *int64) {
	if pos == nil {
		return nil, nil, nil
	}
	b, t, l := int64(pos.BlockNumber), int64(pos.TxIndex), int64(pos.LogIndex)
	return &b, &t, &l
}

func position(block, txIndex, logIndex *int64) *model.EventPosition {
	if block == nil || txIndex == nil || logIndex == nil {
		return nil
	}
	return &model.EventPosition{
		BlockNumber: uint64(*block),
		TxIndex:     uint64(*txIndex),
		LogIndex:    uint64(*logIndex),
	}
}
