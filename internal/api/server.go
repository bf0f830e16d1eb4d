package api

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"slotScope/internal/storage"
)

const shutdownTimeout = 5 * time.Second

// NewApp builds the fiber app with the query routes mounted.
func NewApp(store storage.Reader, logger *zap.Logger) (*fiber.App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		AppName:               "slotScope",
		ErrorHandler:          NewErrorHandler(logger),
		DisableStartupMessage: true,
	})
	app.Use(fiberrecover.New(fiberrecover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			logger.Error("panic in http handler", zap.Any("panic", e), zap.String("path", c.Path()))
		},
	}))

	// Health check
	app.Get("/", func(c *fiber.Ctx) error {
		return errors.WithStack(c.SendStatus(http.StatusOK))
	})

	if err := New(store, logger).Mount(app); err != nil {
		return nil, errors.Wrap(err, "mount routes")
	}
	return app, nil
}

// Serve listens on addr until ctx is done, then shuts the app down.
func Serve(ctx context.Context, app *fiber.App, addr string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", zap.String("addr", addr))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "api listen")
	case <-ctx.Done():
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return errors.Wrap(err, "api shutdown")
		}
		return nil
	}
}
