package api

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"slotScope/internal/model"
)

type getHubResult struct {
	model.Hub
	SlotCreationPrice amount `json:"slot_creation_price"`
	DefaultPrice      amount `json:"default_price"`
}

func (h *HttpHandler) GetHub(ctx *fiber.Ctx) error {
	addr, err := parseAddress("address", ctx.Params("address"))
	if err != nil {
		return err
	}
	hub, found, err := h.store.GetHub(ctx.UserContext(), addr)
	if err != nil {
		return errors.Wrap(err, "error during GetHub")
	}
	if !found {
		return notFound("hub", addr.Hex())
	}

	decimals := h.decimals(ctx, hub.DefaultCurrency, nil)
	return ok(ctx, getHubResult{
		Hub:               hub,
		SlotCreationPrice: newAmount(hub.SlotCreationPrice, decimals),
		DefaultPrice:      newAmount(hub.DefaultPrice, decimals),
	})
}

func (h *HttpHandler) GetFactory(ctx *fiber.Ctx) error {
	addr, err := parseAddress("address", ctx.Params("address"))
	if err != nil {
		return err
	}
	factory, found, err := h.store.GetFactory(ctx.UserContext(), addr)
	if err != nil {
		return errors.Wrap(err, "error during GetFactory")
	}
	if !found {
		return notFound("factory", addr.Hex())
	}
	return ok(ctx, factory)
}
