package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreschagin/megalith-dashboard/pkg/logger"
)

func TestScheduler_RunsPeriodically(t *testing.T) {
	s := New(logger.New("error"))
	defer s.Shutdown()

	var runs atomic.Int32
	_, err := s.Every("tick", 10*time.Millisecond, func() { runs.Add(1) })
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_CancelStopsOnlyOneTask(t *testing.T) {
	s := New(logger.New("error"))
	defer s.Shutdown()

	var a, b atomic.Int32
	handleA, err := s.Every("a", 5*time.Millisecond, func() { a.Add(1) })
	require.NoError(t, err)
	_, err = s.Every("b", 5*time.Millisecond, func() { b.Add(1) })
	require.NoError(t, err)

	handleA.Cancel()
	stopped := a.Load()

	before := b.Load()
	assert.Eventually(t, func() bool { return b.Load() > before+2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, stopped, a.Load(), "canceled task must not run")
	assert.ElementsMatch(t, []string{"b"}, s.Tasks())
}

func TestScheduler_ShutdownStopsEverything(t *testing.T) {
	s := New(logger.New("error"))

	var runs atomic.Int32
	_, err := s.Every("tick", 2*time.Millisecond, func() { runs.Add(1) })
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	s.Shutdown()
	after := runs.Load()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, runs.Load())

	_, err = s.Every("late", time.Millisecond, func() {})
	assert.True(t, errors.Is(err, ErrStopped))

	// повторный Shutdown безопасен
	s.Shutdown()
}

func TestScheduler_RejectsInvalidTask(t *testing.T) {
	s := New(logger.New("error"))
	defer s.Shutdown()

	_, err := s.Every("zero", 0, func() {})
	assert.Error(t, err)

	_, err = s.Every("nil", time.Second, nil)
	assert.Error(t, err)
}

func TestScheduler_SameNameReplaces(t *testing.T) {
	s := New(logger.New("error"))
	defer s.Shutdown()

	first, err := s.Every("task", time.Hour, func() {})
	require.NoError(t, err)
	_, err = s.Every("task", time.Hour, func() {})
	require.NoError(t, err)

	select {
	case <-first.Done():
	case <-time.After(time.Second):
		t.Fatal("replaced task must be stopped")
	}
	assert.Len(t, s.Tasks(), 1)
}
