package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"slotScope/common/errs"
	"slotScope/internal/storage"
)

// HttpHandler serves the read-only query API over an entity store.
type HttpHandler struct {
	store  storage.Reader
	logger *zap.Logger
}

func New(store storage.Reader, logger *zap.Logger) *HttpHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HttpHandler{store: store, logger: logger}
}

type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}

func ok[T any](ctx *fiber.Ctx, result T) error {
	return errors.WithStack(ctx.Status(http.StatusOK).JSON(HttpResponse[T]{Result: &result}))
}

type pageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

func (r pageRequest) page() (storage.Page, error) {
	if r.Limit < 0 || r.Offset < 0 {
		return storage.Page{}, errs.NewPublicError("limit and offset must not be negative")
	}
	if r.Limit > storage.MaxLimit {
		return storage.Page{}, errs.NewPublicError(fmt.Sprintf("limit must not exceed %d", storage.MaxLimit))
	}
	return storage.Page{Limit: r.Limit, Offset: r.Offset}.Normalize(), nil
}

func parseQuery(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.QueryParser(out); err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "invalid query parameters")
	}
	return nil
}

func parseAddress(field, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, errs.NewPublicError(fmt.Sprintf("%s '%s' is not a valid address", field, value))
	}
	return common.HexToAddress(value), nil
}

// optionalAddress parses value when it is set.
func optionalAddress(field, value string) (*common.Address, error) {
	if value == "" {
		return nil, nil
	}
	addr, err := parseAddress(field, value)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func optionalBool(field, value string) (*bool, error) {
	if value == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return nil, errs.NewPublicError(fmt.Sprintf("%s must be true or false", field))
	}
	return &b, nil
}

func notFound(what string, key interface{}) error {
	return errors.Wrapf(errs.NotFound, "%s %v", what, key)
}
