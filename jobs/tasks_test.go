package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPurger struct {
	cutoff  time.Time
	removed int64
	calls   int
}

func (s *stubPurger) PurgeEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.calls++
	s.cutoff = cutoff
	return s.removed, nil
}

func TestPurgeHandler(t *testing.T) {
	purger := &stubPurger{removed: 3}
	handler := NewPurgeHandler(purger, nil)

	task, err := NewPurgeTask(PurgePayload{Retention: 30 * 24 * time.Hour})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	assert.Equal(t, 1, purger.calls)
	assert.WithinDuration(t, time.Now().Add(-30*24*time.Hour), purger.cutoff, time.Minute)
}

func TestPurgeHandlerRejectsBadPayload(t *testing.T) {
	purger := &stubPurger{}
	handler := NewPurgeHandler(purger, nil)

	err := handler(context.Background(), asynq.NewTask(TaskReservationPurge, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Zero(t, purger.calls)
}

func TestPurgeHandlerRejectsZeroRetention(t *testing.T) {
	purger := &stubPurger{}
	handler := NewPurgeHandler(purger, nil)

	task, err := NewPurgeTask(PurgePayload{})
	require.NoError(t, err)

	assert.ErrorIs(t, handler(context.Background(), task), asynq.SkipRetry)
	assert.Zero(t, purger.calls)
}
