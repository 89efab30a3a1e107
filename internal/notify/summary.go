package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tradealerts/internal/state"
)

const metadataKeyLastSummary = "daily_summary_last_sent"

// SummaryJob posts the end-of-day state recap to every symbol's webhook,
// at most once per calendar day.
type SummaryJob struct {
	States    *state.Service
	Directory *Directory
	Sender    *Sender
	Logger    *zap.Logger
	Location  *time.Location
}

func (j *SummaryJob) Run(ctx context.Context) {
	if j == nil || j.States == nil || j.Directory == nil || j.Sender == nil {
		return
	}
	now := time.Now()
	if j.Location != nil {
		now = now.In(j.Location)
	}
	today := now.Format("2006-01-02")

	if last, ok := j.States.GetMetadata(ctx, metadataKeyLastSummary); ok && last == today {
		j.log().Debug("daily summary already sent", zap.String("date", today))
		return
	}

	symbols := j.Directory.Symbols(ctx)
	if len(symbols) == 0 {
		symbols = j.States.Symbols(ctx)
	}

	sent := 0
	for _, symbol := range symbols {
		sum := j.States.GetSummary(ctx, symbol)
		if sum.TotalTimeframes == 0 {
			continue
		}
		url, ok := j.Directory.Resolve(ctx, symbol)
		if !ok {
			continue
		}
		if err := j.Sender.Send(ctx, url, FormatSummary(sum)); err != nil {
			j.log().Error("daily summary send failed", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		sent++
	}

	if sent > 0 {
		j.States.SetMetadata(ctx, metadataKeyLastSummary, today)
	}
	j.log().Info("daily summary run complete", zap.Int("sent", sent), zap.String("date", today))
}

func (j *SummaryJob) log() *zap.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger
	}
	return zap.NewNop()
}
