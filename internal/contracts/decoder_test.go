package contracts

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"slotScope/internal/model"
)

func TestDecodeLandOpened(t *testing.T) {
	decoder := mustDecoder(t)
	hubABI := mustABI(t, HubABI)

	hub := common.HexToAddress("0x1111111111111111111111111111111111111111")
	land := common.HexToAddress("0x2222222222222222222222222222222222222222")
	account := common.HexToAddress("0x3333333333333333333333333333333333333333")

	log := buildLogRecord(t, hub, hubABI, "LandOpened", land, account)
	if !decoder.CanDecode(model.SourceHub, log.Topic0()) {
		t.Fatalf("hub vocabulary should contain LandOpened")
	}
	if decoder.CanDecode(model.SourceSlot, log.Topic0()) {
		t.Fatalf("slot vocabulary should not contain LandOpened")
	}

	decoded, err := decoder.Decode(model.SourceHub, log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	opened, ok := decoded.Payload.(*LandOpened)
	if !ok {
		t.Fatalf("payload type %T", decoded.Payload)
	}
	if opened.Land != land || opened.Account != account {
		t.Fatalf("address mismatch: %+v", opened)
	}
}

func TestDecodeHubSettingsTuple(t *testing.T) {
	decoder := mustDecoder(t)
	hubABI := mustABI(t, HubABI)

	settings := HubSettingsTuple{
		ProtocolFeeBps:            big.NewInt(250),
		ProtocolFeeRecipient:      common.HexToAddress("0x4444444444444444444444444444444444444444"),
		SlotCreationPrice:         big.NewInt(1e18),
		DefaultCurrency:           common.HexToAddress("0x5555555555555555555555555555555555555555"),
		DefaultSlotCount:          big.NewInt(12),
		DefaultPrice:              big.NewInt(1000),
		DefaultTaxPercentage:      big.NewInt(500),
		DefaultMaxTaxPercentage:   big.NewInt(2000),
		DefaultMinTaxUpdatePeriod: big.NewInt(86400),
		DefaultModule:             common.HexToAddress("0x6666666666666666666666666666666666666666"),
	}
	hub := common.HexToAddress("0x1111111111111111111111111111111111111111")
	log := buildLogRecord(t, hub, hubABI, "HubSettingsUpdated", settings)

	decoded, err := decoder.Decode(model.SourceHub, log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := decoded.Payload.(*HubSettingsUpdated).Settings
	if got.ProtocolFeeBps.Int64() != 250 || got.DefaultSlotCount.Int64() != 12 {
		t.Fatalf("numbers mismatch: %+v", got)
	}
	if got.DefaultModule != settings.DefaultModule || got.DefaultCurrency != settings.DefaultCurrency {
		t.Fatalf("addresses mismatch: %+v", got)
	}
}

func TestDecodeSlotCreated(t *testing.T) {
	decoder := mustDecoder(t)
	landABI := mustABI(t, LandABI)

	land := common.HexToAddress("0x2222222222222222222222222222222222222222")
	params := SlotParams{
		Currency:           common.HexToAddress("0x5555555555555555555555555555555555555555"),
		BasePrice:          big.NewInt(100),
		Price:              big.NewInt(150),
		TaxPercentage:      big.NewInt(300),
		MaxTaxPercentage:   big.NewInt(1000),
		MinTaxUpdatePeriod: big.NewInt(3600),
		Module:             common.HexToAddress("0x6666666666666666666666666666666666666666"),
	}
	log := buildLogRecord(t, land, landABI, "SlotCreated", big.NewInt(7), params)

	decoded, err := decoder.Decode(model.SourceLand, log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	created := decoded.Payload.(*SlotCreated)
	if created.SlotId.Int64() != 7 {
		t.Fatalf("slot id mismatch: %s", created.SlotId)
	}
	if created.Params.Price.Int64() != 150 || created.Params.Currency != params.Currency {
		t.Fatalf("params mismatch: %+v", created.Params)
	}
}

func TestDecodeLandAndSlotShareNames(t *testing.T) {
	decoder := mustDecoder(t)
	landABI := mustABI(t, LandABI)
	slotABI := mustABI(t, SlotABI)
	addr := common.HexToAddress("0x2222222222222222222222222222222222222222")

	landLog := buildLogRecord(t, addr, landABI, "PriceUpdated", big.NewInt(3), big.NewInt(10), big.NewInt(20))
	decoded, err := decoder.Decode(model.SourceLand, landLog)
	if err != nil {
		t.Fatalf("decode land: %v", err)
	}
	if _, ok := decoded.Payload.(*LandPriceUpdated); !ok {
		t.Fatalf("land payload type %T", decoded.Payload)
	}

	slotLog := buildLogRecord(t, addr, slotABI, "PriceUpdated", big.NewInt(10), big.NewInt(20))
	decoded, err = decoder.Decode(model.SourceSlot, slotLog)
	if err != nil {
		t.Fatalf("decode slot: %v", err)
	}
	update, ok := decoded.Payload.(*PriceUpdated)
	if !ok {
		t.Fatalf("slot payload type %T", decoded.Payload)
	}
	if update.NewPrice.Int64() != 20 {
		t.Fatalf("new price mismatch: %s", update.NewPrice)
	}
}

func TestDecodeEventWithoutArgs(t *testing.T) {
	decoder := mustDecoder(t)
	slotABI := mustABI(t, SlotABI)
	addr := common.HexToAddress("0x2222222222222222222222222222222222222222")

	log := buildLogRecord(t, addr, slotABI, "PendingUpdateApplied")
	log.Data = ""
	decoded, err := decoder.Decode(model.SourceSlot, log)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Name != "PendingUpdateApplied" {
		t.Fatalf("name mismatch: %s", decoded.Name)
	}
}

func TestDecodeRejectsWrongTopicCount(t *testing.T) {
	decoder := mustDecoder(t)
	landABI := mustABI(t, LandABI)
	addr := common.HexToAddress("0x2222222222222222222222222222222222222222")

	log := buildLogRecord(t, addr, landABI, "SlotReleased", big.NewInt(1))
	log.Topics = log.Topics[:1]
	if _, err := decoder.Decode(model.SourceLand, log); err == nil {
		t.Fatalf("expected topic count error")
	}
}

func TestTopicsDeduplicated(t *testing.T) {
	decoder := mustDecoder(t)
	seen := make(map[common.Hash]bool)
	for _, topic := range decoder.Topics() {
		if seen[topic] {
			t.Fatalf("duplicate topic %s", topic.Hex())
		}
		seen[topic] = true
	}
	if len(seen) == 0 {
		t.Fatalf("no topics")
	}
}

func mustDecoder(t *testing.T) *Decoder {
	t.Helper()
	decoder, err := NewDecoder()
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	return decoder
}

func mustABI(t *testing.T, load func() (abi.ABI, error)) abi.ABI {
	t.Helper()
	parsed, err := load()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	return parsed
}

func buildLogRecord(t *testing.T, addr common.Address, parsed abi.ABI, name string, args ...interface{}) model.LogRecord {
	t.Helper()
	topics, data, err := EncodeEvent(parsed, name, args...)
	if err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
	hexTopics := make([]string, 0, len(topics))
	for _, topic := range topics {
		hexTopics = append(hexTopics, topic.Hex())
	}
	return model.LogRecord{
		ChainID:     1,
		BlockNumber: 12345,
		BlockHash:   "0xabc",
		TxHash:      "0xdef",
		LogIndex:    1,
		Address:     addr.Hex(),
		Topics:      hexTopics,
		Data:        hexutil.Encode(data),
		Timestamp:   1700000000,
	}
}

func TestDecodeRejectsOversizedSlotID(t *testing.T) {
	decoder := mustDecoder(t)
	landABI := mustABI(t, LandABI)
	land := common.HexToAddress("0x2222222222222222222222222222222222222222")

	huge := new(big.Int).Lsh(big.NewInt(1), 64)
	if _, err := decoder.Decode(model.SourceLand, buildLogRecord(t, land, landABI, "SlotActivated", huge)); err == nil {
		t.Fatalf("slot id 2^64 should not decode")
	}

	largest := new(big.Int).SetUint64(^uint64(0))
	decoded, err := decoder.Decode(model.SourceLand, buildLogRecord(t, land, landABI, "SlotActivated", largest))
	if err != nil {
		t.Fatalf("decode max slot id: %v", err)
	}
	if got := decoded.Payload.(*SlotActivated).SlotId; got.Cmp(largest) != 0 {
		t.Fatalf("slot id mismatch: %s", got)
	}
}
