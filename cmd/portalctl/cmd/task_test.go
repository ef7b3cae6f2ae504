package cmd

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/admissions-portal/portalapi"
	"github.com/stretchr/testify/require"
)

// countingFetcher reports pending for the first pending calls, then final.
type countingFetcher struct {
	mu      sync.Mutex
	calls   int
	pending int
	final   portalapi.TaskStatus
}

func (f *countingFetcher) TaskStatus(_ context.Context, _ string) (*portalapi.TaskStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.pending {
		return &portalapi.TaskStatus{Status: portalapi.TaskPending}, nil
	}
	st := f.final
	return &st, nil
}

func TestWatchTask_ReturnsCompletedGrade(t *testing.T) {
	f := &countingFetcher{
		pending: 2,
		final:   portalapi.TaskStatus{Status: portalapi.TaskCompleted, Result: json.RawMessage(`"4,75"`)},
	}

	outcome, err := watchTask(context.Background(), f, "task-1", 5*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, portalapi.TaskCompleted, outcome.State)
	require.Equal(t, 4.75, outcome.Grade)
	require.Equal(t, "task-1", outcome.TaskID)
	require.Equal(t, 3, f.calls)
}

func TestWatchTask_ReturnsFailureMessage(t *testing.T) {
	f := &countingFetcher{
		final: portalapi.TaskStatus{Status: portalapi.TaskFailed, Result: json.RawMessage(`{"error":"Не удалось распознать аттестат"}`)},
	}

	outcome, err := watchTask(context.Background(), f, "task-2", 5*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, portalapi.TaskFailed, outcome.State)
	require.Equal(t, "Не удалось распознать аттестат", outcome.Message)
}

func TestWatchTask_StopsOnCancel(t *testing.T) {
	f := &countingFetcher{pending: 1 << 30}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := watchTask(ctx, f, "task-3", 5*time.Millisecond)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
