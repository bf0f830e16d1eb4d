package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotScope/internal/model"
)

func TestLogArchiveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logs.jsonl")
	archive := NewLogArchive(path)

	require.NoError(t, archive.PutLogBatch([]model.LogRecord{
		{BlockNumber: 10, LogIndex: 0, Topics: []string{"0x01"}},
		{BlockNumber: 10, LogIndex: 1, Topics: []string{"0x02"}},
	}))
	require.NoError(t, archive.PutLogBatch([]model.LogRecord{{BlockNumber: 11}}))
	require.NoError(t, archive.PutLogBatch(nil))

	var blocks []uint64
	err := ReadLogs(path, func(_ int, record model.LogRecord, parseErr error) error {
		require.NoError(t, parseErr)
		blocks = append(blocks, record.BlockNumber)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{10, 10, 11}, blocks)
}

func TestReadLogsReportsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"block_number\":5}\n\nnot json\n"), 0o644))

	var bad []int
	err := ReadLogs(path, func(line int, _ model.LogRecord, parseErr error) error {
		if parseErr != nil {
			bad = append(bad, line)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, bad)
}
