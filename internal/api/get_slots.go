package api

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"slotScope/common/errs"
	"slotScope/internal/model"
)

type slotResult struct {
	ID                   string                      `json:"id"`
	Land                 common.Address              `json:"land"`
	Index                uint64                      `json:"index"`
	Occupant             *common.Address             `json:"occupant"`
	Vacant               bool                        `json:"vacant"`
	Active               bool                        `json:"active"`
	Currency             common.Address              `json:"currency"`
	BasePrice            amount                      `json:"base_price"`
	Price                amount                      `json:"price"`
	TaxPercentage        uint64                      `json:"tax_percentage"`
	MaxTaxPercentage     uint64                      `json:"max_tax_percentage"`
	MinTaxUpdatePeriod   uint64                      `json:"min_tax_update_period"`
	Module               common.Address              `json:"module"`
	PendingTax           model.Track[uint64]         `json:"pending_tax"`
	PendingTaxState      model.PendingState          `json:"pending_tax_state"`
	PendingModule        model.Track[common.Address] `json:"pending_module"`
	PendingModuleState   model.PendingState          `json:"pending_module_state"`
	LiquidationBountyBps uint64                      `json:"liquidation_bounty_bps"`
	Deposit              amount                      `json:"deposit"`
	CollectedTax         amount                      `json:"collected_tax"`
	TaxPaid              amount                      `json:"tax_paid"`
	CreatedAt            uint64                      `json:"created_at"`
	UpdatedAt            uint64                      `json:"updated_at"`
}

func newSlotResult(slot model.Slot, decimals *uint8) slotResult {
	return slotResult{
		ID:                   slot.ID,
		Land:                 slot.Land,
		Index:                slot.Index,
		Occupant:             slot.Occupant,
		Vacant:               slot.Vacant,
		Active:               slot.Active,
		Currency:             slot.Currency,
		BasePrice:            newAmount(slot.BasePrice, decimals),
		Price:                newAmount(slot.Price, decimals),
		TaxPercentage:        slot.TaxPercentage,
		MaxTaxPercentage:     slot.MaxTaxPercentage,
		MinTaxUpdatePeriod:   slot.MinTaxUpdatePeriod,
		Module:               slot.Module,
		PendingTax:           slot.PendingTax,
		PendingTaxState:      slot.PendingTax.State(),
		PendingModule:        slot.PendingModule,
		PendingModuleState:   slot.PendingModule.State(),
		LiquidationBountyBps: slot.LiquidationBountyBps,
		Deposit:              newAmount(slot.Deposit, decimals),
		CollectedTax:         newAmount(slot.CollectedTax, decimals),
		TaxPaid:              newAmount(slot.TaxPaid, decimals),
		CreatedAt:            slot.CreatedAt,
		UpdatedAt:            slot.UpdatedAt,
	}
}

type getSlotResponse = HttpResponse[slotResult]

func (h *HttpHandler) GetSlot(ctx *fiber.Ctx) error {
	slot, err := h.slot(ctx)
	if err != nil {
		return err
	}
	return ok(ctx, newSlotResult(slot, h.decimals(ctx, slot.Currency, nil)))
}

func (h *HttpHandler) slot(ctx *fiber.Ctx) (model.Slot, error) {
	land, index, valid := model.ParseSlotID(ctx.Params("id"))
	if !valid {
		return model.Slot{}, errs.NewPublicError("slot id must be '<land address>-<index>'")
	}
	id := model.SlotID(land, index)
	slot, found, err := h.store.GetSlot(ctx.UserContext(), id)
	if err != nil {
		return model.Slot{}, errors.Wrap(err, "error during GetSlot")
	}
	if !found {
		return model.Slot{}, notFound("slot", id)
	}
	return slot, nil
}

// decimals returns the decimals of currency, or nil when unknown. cache may be nil.
func (h *HttpHandler) decimals(ctx *fiber.Ctx, currency common.Address, cache map[string]*uint8) *uint8 {
	key := strings.ToLower(currency.Hex())
	if cache != nil {
		if d, hit := cache[key]; hit {
			return d
		}
	}
	var d *uint8
	c, found, err := h.store.GetCurrency(ctx.UserContext(), currency)
	switch {
	case err != nil:
		h.logger.Warn("currency lookup failed", zap.String("currency", currency.Hex()), zap.Error(err))
	case found:
		d = c.Decimals
	}
	if cache != nil {
		cache[key] = d
	}
	return d
}
