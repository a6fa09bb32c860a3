package server

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"impostor/internal/events"
	"impostor/internal/metrics"
)

const (
	historyBatchSize     = 16
	historyFlushInterval = 500 * time.Millisecond
	historyDrainTimeout  = 5 * time.Second
)

type gameRecorder interface {
	RecordGame(ctx context.Context, rec events.GameRecord) (int64, error)
}

// historyWriter drains finished games into the store in small batches. A
// failed write is logged and counted, never retried.
func historyWriter(ctx context.Context, store gameRecorder, results <-chan events.GameRecord, m *metrics.Metrics, log zerolog.Logger) {
	ticker := time.NewTicker(historyFlushInterval)
	defer ticker.Stop()

	batch := make([]events.GameRecord, 0, historyBatchSize)
	flush := func(ctx context.Context) {
		for _, rec := range batch {
			id, err := store.RecordGame(ctx, rec)
			if err != nil {
				m.HistoryWrites.WithLabelValues("error").Inc()
				log.Error().Err(err).Str("room_code", rec.RoomCode).Msg("recording game failed")
				continue
			}
			m.HistoryWrites.WithLabelValues("ok").Inc()
			log.Debug().Int64("game_id", id).Str("room_code", rec.RoomCode).Msg("game recorded")
		}
		batch = batch[:0]
	}
	drain := func() {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyDrainTimeout)
		defer cancel()
		flush(dctx)
	}

	for {
		select {
		case <-ctx.Done():
			drain()
			return
		case rec, ok := <-results:
			if !ok {
				drain()
				return
			}
			batch = append(batch, rec)
			if len(batch) >= historyBatchSize {
				flush(ctx)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				flush(ctx)
			}
		}
	}
}
