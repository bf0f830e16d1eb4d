package model

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Factory is a deployer of single-slot instances, keyed by its address.
type Factory struct {
	Address       common.Address  `json:"address"`
	Admin         *common.Address `json:"admin"`
	InstanceCount uint64          `json:"instance_count"`
	LastEvent     *EventPosition  `json:"last_event,omitempty"`
}

// HubSettings is the settings tuple a hub emits on every update.
type HubSettings struct {
	ProtocolFeeBps            uint64          `json:"protocol_fee_bps"`
	ProtocolFeeRecipient      common.Address  `json:"protocol_fee_recipient"`
	SlotCreationPrice         decimal.Decimal `json:"slot_creation_price"`
	DefaultCurrency           common.Address  `json:"default_currency"`
	DefaultSlotCount          uint64          `json:"default_slot_count"`
	DefaultPrice              decimal.Decimal `json:"default_price"`
	DefaultTaxPercentage      uint64          `json:"default_tax_percentage"`
	DefaultMaxTaxPercentage   uint64          `json:"default_max_tax_percentage"`
	DefaultMinTaxUpdatePeriod uint64          `json:"default_min_tax_update_period"`
	DefaultModule             common.Address  `json:"default_module"`
}

// Hub is the protocol registry that opens lands.
type Hub struct {
	Address common.Address `json:"address"`
	HubSettings
	UpdatedAt uint64 `json:"updated_at"`
}

// Land groups slots under one owner. Exactly one of Hub and Factory is set.
type Land struct {
	Address      common.Address  `json:"address"`
	Hub          *common.Address `json:"hub,omitempty"`
	Factory      *common.Address `json:"factory,omitempty"`
	Owner        common.Address  `json:"owner"`
	CreatedAt    uint64          `json:"created_at"`
	CreatedBlock uint64          `json:"created_block"`
	CreatedTx    string          `json:"created_tx"`
}

// Parent returns the hub or factory that created the land.
func (l Land) Parent() common.Address {
	if l.Hub != nil {
		return *l.Hub
	}
	if l.Factory != nil {
		return *l.Factory
	}
	return common.Address{}
}

// Slot is one contestable position of a land.
type Slot struct {
	ID                   string                `json:"id"`
	Land                 common.Address        `json:"land"`
	Index                uint64                `json:"index"`
	Occupant             *common.Address       `json:"occupant"`
	Vacant               bool                  `json:"vacant"`
	Currency             common.Address        `json:"currency"`
	BasePrice            decimal.Decimal       `json:"base_price"`
	Price                decimal.Decimal       `json:"price"`
	Active               bool                  `json:"active"`
	TaxPercentage        uint64                `json:"tax_percentage"`
	MaxTaxPercentage     uint64                `json:"max_tax_percentage"`
	MinTaxUpdatePeriod   uint64                `json:"min_tax_update_period"`
	Module               common.Address        `json:"module"`
	PendingTax           Track[uint64]         `json:"pending_tax"`
	PendingModule        Track[common.Address] `json:"pending_module"`
	LiquidationBountyBps uint64                `json:"liquidation_bounty_bps"`
	Deposit              decimal.Decimal       `json:"deposit"`
	CollectedTax         decimal.Decimal       `json:"collected_tax"`
	TaxPaid              decimal.Decimal       `json:"tax_paid"`
	CreatedAt            uint64                `json:"created_at"`
	UpdatedAt            uint64                `json:"updated_at"`
	LastEvent            *EventPosition        `json:"last_event,omitempty"`
}

// SlotID builds the composite slot key "<land>-<index>".
func SlotID(land common.Address, index uint64) string {
	return strings.ToLower(land.Hex()) + "-" + strconv.FormatUint(index, 10)
}

// Occupy sets the occupant and keeps Vacant in sync.
func (s *Slot) Occupy(account common.Address) {
	a := account
	s.Occupant = &a
	s.Vacant = false
}

// Vacate clears the occupant, resets the price to the base price and drops both pending tracks.
func (s *Slot) Vacate() {
	s.Occupant = nil
	s.Vacant = true
	s.Price = s.BasePrice
	s.Deposit = decimal.Zero
	s.PendingTax.Clear()
	s.PendingModule.Clear()
}

// Applied reports whether an event at pos has already been folded into the slot.
func (s Slot) Applied(pos EventPosition) bool {
	return s.LastEvent != nil && !s.LastEvent.Before(pos)
}

// Applied reports whether an event at pos has already been folded into the factory.
func (f Factory) Applied(pos EventPosition) bool {
	return f.LastEvent != nil && !f.LastEvent.Before(pos)
}

// CurrencyMetadata is the best-effort token metadata; every unset field is nil.
type CurrencyMetadata struct {
	Name               *string         `json:"name"`
	Symbol             *string         `json:"symbol"`
	Decimals           *uint8          `json:"decimals"`
	Underlying         *common.Address `json:"underlying"`
	UnderlyingName     *string         `json:"underlying_name"`
	UnderlyingSymbol   *string         `json:"underlying_symbol"`
	UnderlyingDecimals *uint8          `json:"underlying_decimals"`
}

// Currency is a payment token accepted by slots.
type Currency struct {
	Address common.Address `json:"address"`
	Allowed bool           `json:"allowed"`
	CurrencyMetadata
}

// Enriched reports whether metadata has been populated. Events never re-query a currency with a name.
func (c Currency) Enriched() bool {
	return c.Name != nil
}

// Module is pluggable slot logic allowed by a hub.
type Module struct {
	Address common.Address `json:"address"`
	Allowed bool           `json:"allowed"`
	Name    string         `json:"name"`
	Version string         `json:"version"`
}
