package api

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"

	"slotScope/common/errs"
	"slotScope/internal/model"
	"slotScope/internal/storage"
)

type getEventsRequest struct {
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
	Kind   string `query:"kind"`
	Actor  string `query:"actor"`
}

func (r getEventsRequest) filter() (storage.EventFilter, error) {
	var (
		filter storage.EventFilter
		err    error
	)
	if filter.Page, err = (pageRequest{Limit: r.Limit, Offset: r.Offset}).page(); err != nil {
		return filter, err
	}
	if r.Kind != "" {
		filter.Kind = model.SlotEventKind(r.Kind)
		if !filter.Kind.Valid() {
			return filter, errs.NewPublicError(fmt.Sprintf("kind '%s' is not a known event kind", r.Kind))
		}
	}
	if filter.Actor, err = optionalAddress("actor", r.Actor); err != nil {
		return filter, err
	}
	return filter, nil
}

type eventResult struct {
	ID           string              `json:"id"`
	Kind         model.SlotEventKind `json:"kind"`
	SlotID       string              `json:"slot_id"`
	Land         common.Address      `json:"land"`
	Actor        *common.Address     `json:"actor"`
	Counterparty *common.Address     `json:"counterparty"`
	Amount       *amount             `json:"amount"`
	OldValue     *amount             `json:"old_value"`
	NewValue     *amount             `json:"new_value"`
	OldModule    *common.Address     `json:"old_module,omitempty"`
	NewModule    *common.Address     `json:"new_module,omitempty"`
	BlockNumber  uint64              `json:"block_number"`
	Timestamp    uint64              `json:"timestamp"`
	TxHash       string              `json:"tx_hash"`
	LogIndex     uint64              `json:"log_index"`
}

// newEventResult formats token values with decimals. Tax rate changes carry
// percentages and stay raw.
func newEventResult(event model.SlotEvent, decimals *uint8) eventResult {
	valueDecimals := decimals
	if event.Kind == model.EventTaxRateChange {
		valueDecimals = nil
	}
	return eventResult{
		ID:           event.ID,
		Kind:         event.Kind,
		SlotID:       event.SlotID,
		Land:         event.Land,
		Actor:        event.Actor,
		Counterparty: event.Counterparty,
		Amount:       newNullAmount(event.Amount, decimals),
		OldValue:     newNullAmount(event.OldValue, valueDecimals),
		NewValue:     newNullAmount(event.NewValue, valueDecimals),
		OldModule:    event.OldModule,
		NewModule:    event.NewModule,
		BlockNumber:  event.BlockNumber,
		Timestamp:    event.Timestamp,
		TxHash:       event.TxHash,
		LogIndex:     event.LogIndex,
	}
}

func (h *HttpHandler) GetSlotEvents(ctx *fiber.Ctx) error {
	slot, err := h.slot(ctx)
	if err != nil {
		return err
	}
	var req getEventsRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}
	filter, err := req.filter()
	if err != nil {
		return err
	}
	filter.SlotID = slot.ID

	events, err := h.store.ListEvents(ctx.UserContext(), filter)
	if err != nil {
		return errors.Wrap(err, "error during ListEvents")
	}
	decimals := h.decimals(ctx, slot.Currency, nil)
	results := make([]eventResult, 0, len(events))
	for _, event := range events {
		results = append(results, newEventResult(event, decimals))
	}
	return ok(ctx, results)
}

func (h *HttpHandler) GetEvents(ctx *fiber.Ctx) error {
	var req getEventsRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}
	filter, err := req.filter()
	if err != nil {
		return err
	}

	events, err := h.store.ListEvents(ctx.UserContext(), filter)
	if err != nil {
		return errors.Wrap(err, "error during ListEvents")
	}

	currencies := make(map[string]common.Address)
	cache := make(map[string]*uint8)
	results := make([]eventResult, 0, len(events))
	for _, event := range events {
		currency, known := currencies[event.SlotID]
		if !known {
			slot, found, err := h.store.GetSlot(ctx.UserContext(), event.SlotID)
			if err != nil {
				return errors.Wrap(err, "error during GetSlot")
			}
			if found {
				currency = slot.Currency
			}
			currencies[event.SlotID] = currency
		}
		var decimals *uint8
		if currency != (common.Address{}) {
			decimals = h.decimals(ctx, currency, cache)
		}
		results = append(results, newEventResult(event, decimals))
	}
	return ok(ctx, results)
}
