package indexer

import (
	"context"

	"github.com/cockroachdb/errors"

	"slotScope/common/errs"
	"slotScope/internal/model"
	"slotScope/internal/projector"
	"slotScope/internal/storage"
)

// ReplayStats counts the outcomes of an archive replay.
type ReplayStats struct {
	Total     int
	Applied   int
	Skipped   int
	Failed    int
	LastBlock uint64
}

// Replay feeds an archived JSONL log file through p in file order. Lines that
// do not parse and logs the projector rejects are reported to onError and
// counted; any other projector error stops the replay.
func Replay(ctx context.Context, p *projector.Projector, path string, onError func(model.ProjectionError)) (ReplayStats, error) {
	var stats ReplayStats
	report := func(perr model.ProjectionError) {
		stats.Failed++
		if onError != nil {
			onError(perr)
		}
	}

	err := storage.ReadLogs(path, func(line int, record model.LogRecord, parseErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Total++
		if parseErr != nil {
			report(model.ProjectionError{Line: line, Error: parseErr.Error()})
			return nil
		}

		outcome, err := p.Apply(ctx, record)
		switch {
		case err == nil:
		case errors.Is(err, errs.OutOfOrder), errors.Is(err, projector.ErrUndecodable):
			report(projectionError(line, record, err))
			return nil
		default:
			return errors.Wrapf(err, "line %d", line)
		}

		if outcome == projector.Applied {
			stats.Applied++
		} else {
			stats.Skipped++
		}
		stats.LastBlock = max(stats.LastBlock, record.BlockNumber)
		return nil
	})
	return stats, err
}

func projectionError(line int, record model.LogRecord, err error) model.ProjectionError {
	return model.ProjectionError{
		Line:        line,
		BlockNumber: record.BlockNumber,
		TxHash:      record.TxHash,
		LogIndex:    record.LogIndex,
		Address:     record.Address,
		Topic0:      record.Topic0(),
		Error:       err.Error(),
	}
}
