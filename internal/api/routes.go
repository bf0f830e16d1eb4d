package api

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1")

	r.Get("/stats", h.GetStats)
	r.Get("/hubs/:address", h.GetHub)
	r.Get("/factories/:address", h.GetFactory)
	r.Get("/lands", h.GetLands)
	r.Get("/lands/:address", h.GetLand)
	r.Get("/lands/:address/slots", h.GetLandSlots)
	r.Get("/slots/:id", h.GetSlot)
	r.Get("/slots/:id/events", h.GetSlotEvents)
	r.Get("/events", h.GetEvents)
	r.Get("/currencies", h.GetCurrencies)
	r.Get("/currencies/:address", h.GetCurrency)
	r.Get("/modules", h.GetModules)
	r.Get("/modules/:address", h.GetModule)
	return nil
}
