package model

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// SlotEventKind names an append-only history record type.
type SlotEventKind string

const (
	EventPurchase      SlotEventKind = "purchase"
	EventRelease       SlotEventKind = "release"
	EventLiquidation   SlotEventKind = "liquidation"
	EventPriceUpdate   SlotEventKind = "price_update"
	EventDeposit       SlotEventKind = "deposit"
	EventWithdrawal    SlotEventKind = "withdrawal"
	EventSettlement    SlotEventKind = "settlement"
	EventTaxCollected  SlotEventKind = "tax_collected"
	EventTaxRateChange SlotEventKind = "tax_rate_change"
	EventModuleChange  SlotEventKind = "module_change"
)

// SlotEvent is an immutable history record keyed by (tx hash, log index).
//
// Actor is the account that triggered the event (buyer, liquidator, depositor, collector).
// Counterparty is the account on the other side (previous occupant, liquidated occupant).
// Amount carries the primary value; OldValue/NewValue carry before/after values.
type SlotEvent struct {
	ID           string              `json:"id"`
	Kind         SlotEventKind       `json:"kind"`
	SlotID       string              `json:"slot_id"`
	Land         common.Address      `json:"land"`
	Actor        *common.Address     `json:"actor"`
	Counterparty *common.Address     `json:"counterparty"`
	Amount       decimal.NullDecimal `json:"amount"`
	OldValue     decimal.NullDecimal `json:"old_value"`
	NewValue     decimal.NullDecimal `json:"new_value"`
	OldModule    *common.Address     `json:"old_module,omitempty"`
	NewModule    *common.Address     `json:"new_module,omitempty"`
	BlockNumber  uint64              `json:"block_number"`
	Timestamp    uint64              `json:"timestamp"`
	TxHash       string              `json:"tx_hash"`
	LogIndex     uint64              `json:"log_index"`
}

// EventID builds the append-only record key "<tx hash>-<log index>".
func EventID(txHash string, logIndex uint64) string {
	return strings.ToLower(txHash) + "-" + strconv.FormatUint(logIndex, 10)
}

// Valid reports whether k is a known history record kind.
func (k SlotEventKind) Valid() bool {
	switch k {
	case EventPurchase, EventRelease, EventLiquidation, EventPriceUpdate, EventDeposit,
		EventWithdrawal, EventSettlement, EventTaxCollected, EventTaxRateChange, EventModuleChange:
		return true
	}
	return false
}

// ParseSlotID splits a "<land>-<index>" key. It accepts any address casing.
func ParseSlotID(id string) (common.Address, uint64, bool) {
	land, index, ok := strings.Cut(id, "-")
	if !ok || !common.IsHexAddress(land) {
		return common.Address{}, 0, false
	}
	n, err := strconv.ParseUint(index, 10, 64)
	if err != nil {
		return common.Address{}, 0, false
	}
	return common.HexToAddress(land), n, true
}
