package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReservationPurge removes reservations that ended long ago.
	TaskReservationPurge = "reservation:purge"
)

// PurgePayload carries the retention window for a purge run.
type PurgePayload struct {
	Retention time.Duration `json:"retention"`
}

// NewPurgeTask constructs a purge task for the given retention window.
func NewPurgeTask(payload PurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReservationPurge, data), nil
}

// ReservationPurger deletes reservations that ended before the cutoff.
type ReservationPurger interface {
	PurgeEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewPurgeHandler builds the handler for TaskReservationPurge tasks.
func NewPurgeHandler(purger ReservationPurger, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload PurgePayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.Retention <= 0 {
			return asynq.SkipRetry
		}
		cutoff := time.Now().Add(-payload.Retention)
		removed, err := purger.PurgeEndedBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		if logger != nil {
			logger.Info("reservation purge",
				slog.Time("cutoff", cutoff),
				slog.Int64("removed", removed))
		}
		return nil
	}
}
