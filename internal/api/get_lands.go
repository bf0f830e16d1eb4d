package api

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"slotScope/internal/model"
	"slotScope/internal/storage"
)

type getLandsRequest struct {
	Limit   int    `query:"limit"`
	Offset  int    `query:"offset"`
	Hub     string `query:"hub"`
	Factory string `query:"factory"`
	Owner   string `query:"owner"`
}

func (r getLandsRequest) filter() (storage.LandFilter, error) {
	var (
		filter storage.LandFilter
		err    error
	)
	if filter.Page, err = (pageRequest{Limit: r.Limit, Offset: r.Offset}).page(); err != nil {
		return filter, err
	}
	if filter.Hub, err = optionalAddress("hub", r.Hub); err != nil {
		return filter, err
	}
	if filter.Factory, err = optionalAddress("factory", r.Factory); err != nil {
		return filter, err
	}
	if filter.Owner, err = optionalAddress("owner", r.Owner); err != nil {
		return filter, err
	}
	return filter, nil
}

func (h *HttpHandler) GetLands(ctx *fiber.Ctx) error {
	var req getLandsRequest
	if err := parseQuery(ctx, &req); err != nil {
		return err
	}
	filter, err := req.filter()
	if err != nil {
		return err
	}

	lands, err := h.store.ListLands(ctx.UserContext(), filter)
	if err != nil {
		return errors.Wrap(err, "error during ListLands")
	}
	return ok(ctx, lands)
}

func (h *HttpHandler) GetLand(ctx *fiber.Ctx) error {
	land, err := h.land(ctx)
	if err != nil {
		return err
	}
	return ok(ctx, land)
}

func (h *HttpHandler) GetLandSlots(ctx *fiber.Ctx) error {
	land, err := h.land(ctx)
	if err != nil {
		return err
	}
	vacant, err := optionalBool("vacant", ctx.Query("vacant"))
	if err != nil {
		return err
	}

	slots, err := h.store.ListSlots(ctx.UserContext(), storage.SlotFilter{Land: land.Address, Vacant: vacant})
	if err != nil {
		return errors.Wrap(err, "error during ListSlots")
	}

	cache := make(map[string]*uint8)
	results := make([]slotResult, 0, len(slots))
	for _, slot := range slots {
		results = append(results, newSlotResult(slot, h.decimals(ctx, slot.Currency, cache)))
	}
	return ok(ctx, results)
}

func (h *HttpHandler) land(ctx *fiber.Ctx) (model.Land, error) {
	addr, err := parseAddress("address", ctx.Params("address"))
	if err != nil {
		return model.Land{}, err
	}
	land, found, err := h.store.GetLand(ctx.UserContext(), addr)
	if err != nil {
		return model.Land{}, errors.Wrap(err, "error during GetLand")
	}
	if !found {
		return model.Land{}, notFound("land", addr.Hex())
	}
	return land, nil
}
