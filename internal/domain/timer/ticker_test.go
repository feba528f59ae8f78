package timer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nkall/chronotrack/internal/domain/timer"
	"github.com/nkall/chronotrack/internal/repository/mocks"
)

func TestTicker_EmitsWhileRunning(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &mocks.EntryRepository{}
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	svc := newTestService(repo, &now)

	repo.On("InTx", mock.Anything, mock.Anything).Return(nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	repo.On("FlushRunningDuration", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	started, err := svc.Start(ctx, timer.StartRequest{Title: "ticking"})
	require.NoError(t, err)

	ticks := make(chan timer.Tick, 1)
	tk := timer.NewTicker(svc, 5*time.Millisecond, 5*time.Millisecond, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		tk.Run(ctx, func(tick timer.Tick) {
			select {
			case ticks <- tick:
			default:
			}
		})
	}()

	select {
	case tick := <-ticks:
		require.Equal(t, started.ID, tick.EntryID)
	case <-time.After(2 * time.Second):
		t.Fatal("no tick emitted")
	}

	cancel()
	<-done
}

func TestTicker_SilentWhileIdle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &mocks.EntryRepository{}
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	svc := newTestService(repo, &now)

	var fired bool
	tk := timer.NewTicker(svc, time.Millisecond, time.Millisecond, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		tk.Run(ctx, func(timer.Tick) { fired = true })
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	<-done
	require.False(t, fired)
}

func TestTicker_DefaultsIntervals(t *testing.T) {
	repo := &mocks.EntryRepository{}
	now := time.Now()
	svc := newTestService(repo, &now)

	// Non-positive intervals fall back to sane defaults rather than a
	// busy-looping zero-interval ticker.
	require.NotNil(t, timer.NewTicker(svc, 0, 0, nil))
	require.NotNil(t, timer.NewTicker(svc, -time.Second, 0, nil))
}
