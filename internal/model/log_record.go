package model

import "strings"

// LogRecord is the normalized representation of a chain log as it is archived and projected.
type LogRecord struct {
	ChainID     uint64   `json:"chain_id"`
	BlockNumber uint64   `json:"block_number"`
	BlockHash   string   `json:"block_hash"`
	TxHash      string   `json:"tx_hash"`
	TxIndex     uint64   `json:"tx_index"`
	LogIndex    uint64   `json:"log_index"`
	Address     string   `json:"address"`
	Topics      []string `json:"topics"`
	Data        string   `json:"data"`
	Removed     bool     `json:"removed"`
	Timestamp   uint64   `json:"timestamp"`
	IngestedAt  string   `json:"ingested_at"`
}

// Position returns the chain position of the log.
func (lr LogRecord) Position() EventPosition {
	return EventPosition{
		BlockNumber: lr.BlockNumber,
		TxIndex:     lr.TxIndex,
		LogIndex:    lr.LogIndex,
	}
}

// Topic0 returns the lower-cased event signature hash, or "" for anonymous logs.
func (lr LogRecord) Topic0() string {
	if len(lr.Topics) == 0 {
		return ""
	}
	return strings.ToLower(lr.Topics[0])
}

// ProjectionError records a log that could not be read or applied during a replay.
type ProjectionError struct {
	Line        int    `json:"line"`
	BlockNumber uint64 `json:"block_number,omitempty"`
	TxHash      string `json:"tx_hash,omitempty"`
	LogIndex    uint64 `json:"log_index,omitempty"`
	Address     string `json:"address,omitempty"`
	Topic0      string `json:"topic0,omitempty"`
	Error       string `json:"error"`
}
