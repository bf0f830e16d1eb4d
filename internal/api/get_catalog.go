package api

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) GetCurrencies(ctx *fiber.Ctx) error {
	var req pageRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}
	page, err := req.page()
	if err != nil {
		return err
	}
	currencies, err := h.store.ListCurrencies(ctx.UserContext(), page)
	if err != nil {
		return errors.Wrap(err, "error during ListCurrencies")
	}
	return ok(ctx, currencies)
}

func (h *HttpHandler) GetCurrency(ctx *fiber.Ctx) error {
	addr, err := parseAddress("address", ctx.Params("address"))
	if err != nil {
		return err
	}
	currency, found, err := h.store.GetCurrency(ctx.UserContext(), addr)
	if err != nil {
		return errors.Wrap(err, "error during GetCurrency")
	}
	if !found {
		return notFound("currency", addr.Hex())
	}
	return ok(ctx, currency)
}

func (h *HttpHandler) GetModules(ctx *fiber.Ctx) error {
	var req pageRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}
	page, err := req.page()
	if err != nil {
		return err
	}
	modules, err := h.store.ListModules(ctx.UserContext(), page)
	if err != nil {
		return errors.Wrap(err, "error during ListModules")
	}
	return ok(ctx, modules)
}

func (h *HttpHandler) GetModule(ctx *fiber.Ctx) error {
	addr, err := parseAddress("address", ctx.Params("address"))
	if err != nil {
		return err
	}
	module, found, err := h.store.GetModule(ctx.UserContext(), addr)
	if err != nil {
		return errors.Wrap(err, "error during GetModule")
	}
	if !found {
		return notFound("module", addr.Hex())
	}
	return ok(ctx, module)
}
