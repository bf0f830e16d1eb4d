package model

import "fmt"

// EventPosition is the chain order of a log: block, then transaction, then log index.
type EventPosition struct {
	BlockNumber uint64 `json:"block_number"`
	TxIndex     uint64 `json:"tx_index"`
	LogIndex    uint64 `json:"log_index"`
}

// Compare returns -1, 0 or 1 depending on whether p sorts before, equal to or after o.
func (p EventPosition) Compare(o EventPosition) int {
	switch {
	case p.BlockNumber != o.BlockNumber:
		return cmpUint(p.BlockNumber, o.BlockNumber)
	case p.TxIndex != o.TxIndex:
		return cmpUint(p.TxIndex, o.TxIndex)
	default:
		return cmpUint(p.LogIndex, o.LogIndex)
	}
}

// Before reports whether p sorts strictly before o.
func (p EventPosition) Before(o EventPosition) bool {
	return p.Compare(o) < 0
}

func (p EventPosition) String() string {
	return fmt.Sprintf("%d:%d:%d", p.BlockNumber, p.TxIndex, p.LogIndex)
}

func cmpUint(a, b uint64) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
