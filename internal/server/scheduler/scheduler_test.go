package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/planboard/internal/server/models"
)

type fakeCapturer struct {
	calls atomic.Int32
	err   error
}

func (f *fakeCapturer) Capture(context.Context) (models.Snapshot, error) {
	f.calls.Add(1)
	return models.Snapshot{ID: "backup_x"}, f.err
}

func TestValidate(t *testing.T) {
	for _, spec := range []string{"@every 24h", "@daily", "0 3 * * *", "30 0 3 * * *"} {
		assert.NoError(t, Validate(spec), spec)
	}
	for _, spec := range []string{"", "every day", "61 * * * *", "@every banana"} {
		assert.Error(t, Validate(spec), spec)
	}
}

func TestSchedule(t *testing.T) {
	s := New(time.UTC, &fakeCapturer{}, nil)

	_, err := s.Schedule("nonsense")
	require.Error(t, err)
	assert.True(t, s.Next().IsZero())

	_, err = s.Schedule("@every 1h")
	require.NoError(t, err)

	s.Start()
	defer s.Stop()
	require.Eventually(t, func() bool { return !s.Next().IsZero() }, time.Second, 10*time.Millisecond)
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.Next(), 5*time.Second)
}

func TestRunOnce(t *testing.T) {
	ok := &fakeCapturer{}
	New(nil, ok, nil).RunOnce(context.Background())
	assert.EqualValues(t, 1, ok.calls.Load())

	failing := &fakeCapturer{err: errors.New("disk full")}
	New(nil, failing, nil).RunOnce(context.Background())
	assert.EqualValues(t, 1, failing.calls.Load(), "a failed run is logged, not retried")
}
