package api

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"slotScope/internal/storage"
)

type getStatsResponse = HttpResponse[storage.Stats]

func (h *HttpHandler) GetStats(ctx *fiber.Ctx) error {
	stats, err := h.store.Stats(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during Stats")
	}
	return ok(ctx, stats)
}
