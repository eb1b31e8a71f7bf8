package ingestion

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RunSummary accounts for every record handed to one ingestion run.
// Received = Rejected + records that reached dedup; Deduplicated products
// split into Encoded, Skipped and IndexFailed once the encode stage is done.
type RunSummary struct {
	RunID        string
	Received     int
	Rejected     int
	Deduplicated int
	Upserted     int
	Encoded      int
	Skipped      int
	IndexFailed  int
	StartedAt    time.Time
	FinishedAt   time.Time
	Duration     time.Duration
}

func newRunSummary(received int) *RunSummary {
	return &RunSummary{
		RunID:     uuid.NewString(),
		Received:  received,
		StartedAt: time.Now().UTC(),
	}
}

func (s *RunSummary) finish() {
	s.FinishedAt = time.Now().UTC()
	s.Duration = s.FinishedAt.Sub(s.StartedAt)
}

// Log writes a one-line report of the run.
func (s *RunSummary) Log(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("ingestion run complete",
		"runId", s.RunID,
		"received", s.Received,
		"rejected", s.Rejected,
		"products", s.Deduplicated,
		"upserted", s.Upserted,
		"encoded", s.Encoded,
		"skipped", s.Skipped,
		"indexFailed", s.IndexFailed,
		"duration", s.Duration,
	)
}
