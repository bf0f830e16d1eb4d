package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotScope/internal/model"
	"slotScope/internal/storage"
	"slotScope/internal/storage/memory"
)

var (
	hubAddr  = common.HexToAddress("0x1000000000000000000000000000000000000001")
	landA    = common.HexToAddress("0x2000000000000000000000000000000000000001")
	landB    = common.HexToAddress("0x2000000000000000000000000000000000000002")
	owner    = common.HexToAddress("0x3000000000000000000000000000000000000001")
	buyer    = common.HexToAddress("0x3000000000000000000000000000000000000002")
	usdc     = common.HexToAddress("0x4000000000000000000000000000000000000001")
	moduleA  = common.HexToAddress("0x5000000000000000000000000000000000000001")
	unlisted = common.HexToAddress("0x9000000000000000000000000000000000000009")
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.WithTx(ctx, func(tx storage.Tx) error {
		hub := hubAddr
		for _, land := range []model.Land{
			{Address: landA, Hub: &hub, Owner: owner, CreatedBlock: 10, CreatedAt: 1000},
			{Address: landB, Hub: &hub, Owner: owner, CreatedBlock: 20, CreatedAt: 2000},
		} {
			if err := tx.PutLand(ctx, land); err != nil {
				return err
			}
		}
		if err := tx.PutHub(ctx, model.Hub{Address: hubAddr}); err != nil {
			return err
		}
		if err := tx.PutCurrency(ctx, model.Currency{
			Address:          usdc,
			Allowed:          true,
			CurrencyMetadata: model.CurrencyMetadata{Name: lo.ToPtr("USD Coin"), Symbol: lo.ToPtr("USDC"), Decimals: lo.ToPtr(uint8(6))},
		}); err != nil {
			return err
		}
		if err := tx.PutModule(ctx, model.Module{Address: moduleA, Allowed: true, Name: "metadata"}); err != nil {
			return err
		}

		occupied := model.Slot{
			ID:            model.SlotID(landA, 0),
			Land:          landA,
			Currency:      usdc,
			BasePrice:     decimal.NewFromInt(1_000_000),
			Price:         decimal.NewFromInt(2_500_000),
			TaxPercentage: 100,
			Module:        moduleA,
			Active:        true,
		}
		occupied.Occupy(buyer)
		vacant := model.Slot{
			ID:        model.SlotID(landA, 1),
			Land:      landA,
			Index:     1,
			Vacant:    true,
			Currency:  usdc,
			BasePrice: decimal.NewFromInt(1_000_000),
			Price:     decimal.NewFromInt(1_000_000),
			Active:    true,
		}
		for _, slot := range []model.Slot{occupied, vacant} {
			if err := tx.PutSlot(ctx, slot); err != nil {
				return err
			}
		}

		if err := tx.InsertEvent(ctx, model.SlotEvent{
			ID:          model.EventID("0xaa", 1),
			Kind:        model.EventPurchase,
			SlotID:      occupied.ID,
			Land:        landA,
			Actor:       lo.ToPtr(buyer),
			Amount:      decimal.NewNullDecimal(decimal.NewFromInt(2_500_000)),
			BlockNumber: 30,
			TxHash:      "0xaa",
			LogIndex:    1,
		}); err != nil {
			return err
		}
		return tx.InsertEvent(ctx, model.SlotEvent{
			ID:          model.EventID("0xbb", 2),
			Kind:        model.EventTaxRateChange,
			SlotID:      occupied.ID,
			Land:        landA,
			OldValue:    decimal.NewNullDecimal(decimal.NewFromInt(50)),
			NewValue:    decimal.NewNullDecimal(decimal.NewFromInt(100)),
			BlockNumber: 31,
			TxHash:      "0xbb",
			LogIndex:    2,
		})
	}))

	app, err := NewApp(store, nil)
	require.NoError(t, err)
	return app
}

func get[T any](t *testing.T, app *fiber.App, path string, wantStatus int) HttpResponse[T] {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, string(body))

	var out HttpResponse[T]
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func TestGetSlotFormatsAmounts(t *testing.T) {
	app := newTestApp(t)

	resp := get[slotResult](t, app, "/v1/slots/garbage", http.StatusBadRequest)
	require.NotNil(t, resp.Error)

	// Checksummed and lower-case keys address the same slot.
	resp = get[slotResult](t, app, "/v1/slots/"+landA.Hex()+"-0", http.StatusOK)
	require.NotNil(t, resp.Result)
	slot := resp.Result
	assert.Equal(t, model.SlotID(landA, 0), slot.ID)
	assert.Equal(t, buyer, *slot.Occupant)
	assert.Equal(t, "2500000", slot.Price.Raw)
	require.NotNil(t, slot.Price.Formatted)
	assert.Equal(t, "2.5", *slot.Price.Formatted)
	assert.Equal(t, model.PendingNone, slot.PendingTaxState)
}

func TestGetLandSlotsVacancyFilter(t *testing.T) {
	app := newTestApp(t)

	all := get[[]slotResult](t, app, "/v1/lands/"+landA.Hex()+"/slots", http.StatusOK)
	require.Len(t, *all.Result, 2)
	assert.EqualValues(t, 0, (*all.Result)[0].Index)

	vacant := get[[]slotResult](t, app, "/v1/lands/"+landA.Hex()+"/slots?vacant=true", http.StatusOK)
	require.Len(t, *vacant.Result, 1)
	assert.EqualValues(t, 1, (*vacant.Result)[0].Index)

	get[[]slotResult](t, app, "/v1/lands/"+landA.Hex()+"/slots?vacant=maybe", http.StatusBadRequest)
}

func TestGetLands(t *testing.T) {
	app := newTestApp(t)

	resp := get[[]model.Land](t, app, "/v1/lands?hub="+hubAddr.Hex(), http.StatusOK)
	require.Len(t, *resp.Result, 2)
	assert.Equal(t, landB, (*resp.Result)[0].Address, "newest land first")

	resp = get[[]model.Land](t, app, "/v1/lands?limit=1&offset=1", http.StatusOK)
	require.Len(t, *resp.Result, 1)
	assert.Equal(t, landA, (*resp.Result)[0].Address)

	get[[]model.Land](t, app, "/v1/lands?owner=nope", http.StatusBadRequest)
	get[[]model.Land](t, app, "/v1/lands?limit=501", http.StatusBadRequest)
	get[model.Land](t, app, "/v1/lands/nope", http.StatusBadRequest)
	get[model.Land](t, app, "/v1/lands/"+unlisted.Hex(), http.StatusNotFound)
}

func TestGetEvents(t *testing.T) {
	app := newTestApp(t)

	resp := get[[]eventResult](t, app, "/v1/slots/"+model.SlotID(landA, 0)+"/events", http.StatusOK)
	events := *resp.Result
	require.Len(t, events, 2)
	assert.Equal(t, model.EventTaxRateChange, events[0].Kind)
	assert.Nil(t, events[0].NewValue.Formatted, "percentages are not token amounts")
	require.NotNil(t, events[1].Amount)
	assert.Equal(t, "2.5", *events[1].Amount.Formatted)

	resp = get[[]eventResult](t, app, "/v1/events?kind=purchase&actor="+buyer.Hex(), http.StatusOK)
	require.Len(t, *resp.Result, 1)

	get[[]eventResult](t, app, "/v1/events?kind=mint", http.StatusBadRequest)
	get[[]eventResult](t, app, "/v1/slots/"+model.SlotID(unlisted, 0)+"/events", http.StatusNotFound)
}

func TestGetCatalogAndStats(t *testing.T) {
	app := newTestApp(t)

	currency := get[model.Currency](t, app, "/v1/currencies/"+usdc.Hex(), http.StatusOK)
	assert.Equal(t, "USDC", *currency.Result.Symbol)

	modules := get[[]model.Module](t, app, "/v1/modules", http.StatusOK)
	require.Len(t, *modules.Result, 1)
	get[model.Module](t, app, "/v1/modules/"+unlisted.Hex(), http.StatusNotFound)

	hub := get[getHubResult](t, app, "/v1/hubs/"+hubAddr.Hex(), http.StatusOK)
	assert.Equal(t, hubAddr, hub.Result.Address)
	get[model.Factory](t, app, "/v1/factories/"+unlisted.Hex(), http.StatusNotFound)

	stats := get[storage.Stats](t, app, "/v1/stats", http.StatusOK)
	assert.EqualValues(t, 2, stats.Result.Lands)
	assert.EqualValues(t, 2, stats.Result.Slots)
	assert.EqualValues(t, 1, stats.Result.OccupiedSlots)
	assert.EqualValues(t, 2, stats.Result.Events)
}
