package worker

import (
	"context"
	"log/slog"

	"github.com/bitcoindistrict/bookclub-api/internal/metrics"
)

// VoteEvent is emitted after a vote lands in the ledger. Delivery is best
// effort; the request path drops the event rather than block on a full
// channel.
type VoteEvent struct {
	PollID  int64
	BookID  int64
	VoterID string
}

type StatsWorker struct {
	Ch     <-chan VoteEvent
	logger *slog.Logger
}

func NewStatsWorker(ch <-chan VoteEvent, logger *slog.Logger) *StatsWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsWorker{Ch: ch, logger: logger}
}

func (w *StatsWorker) Run(ctx context.Context) {
	w.logger.Info("stats worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stats worker stopped")
			return
		case ev := <-w.Ch:
			metrics.IncVote(ev.PollID)
			w.logger.Debug("vote recorded",
				"poll_id", ev.PollID,
				"book_id", ev.BookID,
			)
		}
	}
}
