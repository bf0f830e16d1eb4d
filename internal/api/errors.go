package api

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"slotScope/common/errs"
)

// NewErrorHandler maps public errors to 400, missing records to 404 and
// everything else to a logged 500.
func NewErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx *fiber.Ctx, err error) error {
		if e := new(errs.PublicError); errors.As(err, &e) {
			return errors.WithStack(ctx.Status(http.StatusBadRequest).JSON(errorBody(e.Message())))
		}
		if errors.Is(err, errs.NotFound) {
			return errors.WithStack(ctx.Status(http.StatusNotFound).JSON(errorBody(err.Error())))
		}
		if e := new(fiber.Error); errors.As(err, &e) {
			return errors.WithStack(ctx.Status(e.Code).JSON(errorBody(e.Message)))
		}

		logger.Error("unhandled api error",
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.Path()),
			zap.Error(err),
		)
		return errors.WithStack(ctx.Status(http.StatusInternalServerError).JSON(errorBody("Internal Server Error")))
	}
}

func errorBody(message string) HttpResponse[struct{}] {
	return HttpResponse[struct{}]{Error: &message}
}
