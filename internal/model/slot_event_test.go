package model

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestSlotIDRoundTrip(t *testing.T) {
	land := common.HexToAddress("0x2000000000000000000000000000000000000001")
	id := SlotID(land, 7)
	if id != "0x2000000000000000000000000000000000000001-7" {
		t.Fatalf("unexpected slot id: %s", id)
	}

	parsed, index, ok := ParseSlotID("0x2000000000000000000000000000000000000001-7")
	if !ok || parsed != land || index != 7 {
		t.Fatalf("parse mismatch: %s %d %v", parsed.Hex(), index, ok)
	}

	for _, bad := range []string{"", "0x20-1", "0x2000000000000000000000000000000000000001", "0x2000000000000000000000000000000000000001-x"} {
		if _, _, ok := ParseSlotID(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestSlotEventKindValid(t *testing.T) {
	if !EventModuleChange.Valid() {
		t.Fatalf("module_change should be valid")
	}
	if SlotEventKind("mint").Valid() {
		t.Fatalf("unknown kind should be invalid")
	}
}
