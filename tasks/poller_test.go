package tasks_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/admissions-portal/portalapi"
	"github.com/jrsteele09/admissions-portal/tasks"
	"github.com/stretchr/testify/require"
)

const tick = 5 * time.Millisecond

type scriptedFetcher struct {
	mu      sync.Mutex
	calls   map[string]int
	scripts map[string][]result
}

type result struct {
	status string
	body   string
	err    error
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{calls: map[string]int{}, scripts: map[string][]result{}}
}

func (f *scriptedFetcher) script(taskID string, rs ...result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[taskID] = rs
}

// TaskStatus replays the script for taskID, repeating pending once it runs out.
func (f *scriptedFetcher) TaskStatus(_ context.Context, taskID string) (*portalapi.TaskStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := f.calls[taskID]
	f.calls[taskID]++

	rs := f.scripts[taskID]
	if n >= len(rs) {
		return &portalapi.TaskStatus{Status: portalapi.TaskPending}, nil
	}
	r := rs[n]
	if r.err != nil {
		return nil, r.err
	}
	status := &portalapi.TaskStatus{Status: portalapi.TaskState(r.status)}
	if r.body != "" {
		status.Result = []byte(r.body)
	}
	return status, nil
}

func (f *scriptedFetcher) count(taskID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[taskID]
}

type fixture struct {
	fetcher  *scriptedFetcher
	poller   *tasks.Poller
	outcomes chan tasks.Outcome
}

func setupTestFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{fetcher: newScriptedFetcher(), outcomes: make(chan tasks.Outcome, 8)}
	f.poller = tasks.NewPoller(f.fetcher,
		tasks.WithInterval(tick),
		tasks.WithOnComplete(func(o tasks.Outcome) { f.outcomes <- o }),
	)
	t.Cleanup(f.poller.Stop)
	return f
}

func (f *fixture) awaitOutcome(t *testing.T) tasks.Outcome {
	t.Helper()
	select {
	case o := <-f.outcomes:
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("no outcome")
		return tasks.Outcome{}
	}
}

func TestPoller_CompletesWithGrade(t *testing.T) {
	f := setupTestFixture(t)
	f.fetcher.script("abc123",
		result{status: "pending"},
		result{status: "pending"},
		result{status: "completed", body: "4.5"},
	)

	f.poller.Start(context.Background(), "abc123")
	id, ok := f.poller.Active()
	require.True(t, ok)
	require.Equal(t, "abc123", id)

	o := f.awaitOutcome(t)
	require.Equal(t, portalapi.TaskCompleted, o.State)
	require.Equal(t, 4.5, o.Grade)
	require.Equal(t, "abc123", o.TaskID)

	_, ok = f.poller.Active()
	require.False(t, ok)

	time.Sleep(10 * tick)
	require.Equal(t, 3, f.fetcher.count("abc123"))
	require.Empty(t, f.outcomes)

	last, ok := f.poller.Last()
	require.True(t, ok)
	require.Equal(t, 4.5, last.Grade)
}

func TestPoller_FailedTaskCarriesMessage(t *testing.T) {
	f := setupTestFixture(t)
	f.fetcher.script("t1", result{status: "failed", body: `{"error":"Документ не распознан"}`})

	f.poller.Start(context.Background(), "t1")

	o := f.awaitOutcome(t)
	require.Equal(t, portalapi.TaskFailed, o.State)
	require.Equal(t, "Документ не распознан", o.Message)
	require.NoError(t, o.Err)
}

func TestPoller_RequestErrorStopsWithoutRetry(t *testing.T) {
	f := setupTestFixture(t)
	f.fetcher.script("t1",
		result{status: "pending"},
		result{err: &portalapi.Error{Code: portalapi.CodeServerError, Message: "Произошла ошибка на сервере", Err: errors.New("connection refused")}},
	)

	f.poller.Start(context.Background(), "t1")

	o := f.awaitOutcome(t)
	require.Equal(t, "Произошла ошибка на сервере", o.Message)
	require.Error(t, o.Err)

	time.Sleep(10 * tick)
	require.Equal(t, 2, f.fetcher.count("t1"))
	_, ok := f.poller.Active()
	require.False(t, ok)
}

func TestPoller_RestartCancelsPrevious(t *testing.T) {
	f := setupTestFixture(t)

	f.poller.Start(context.Background(), "first")
	require.Eventually(t, func() bool { return f.fetcher.count("first") > 0 }, time.Second, tick)

	f.poller.Start(context.Background(), "second")
	stopped := f.fetcher.count("first")

	time.Sleep(10 * tick)
	require.Equal(t, stopped, f.fetcher.count("first"))
	require.Greater(t, f.fetcher.count("second"), 0)

	id, ok := f.poller.Active()
	require.True(t, ok)
	require.Equal(t, "second", id)
}

func TestPoller_StopRecordsNothing(t *testing.T) {
	f := setupTestFixture(t)

	f.poller.Start(context.Background(), "t1")
	require.Eventually(t, func() bool { return f.fetcher.count("t1") > 0 }, time.Second, tick)
	f.poller.Stop()
	stopped := f.fetcher.count("t1")

	time.Sleep(10 * tick)
	require.Equal(t, stopped, f.fetcher.count("t1"))
	require.Empty(t, f.outcomes)
	_, ok := f.poller.Last()
	require.False(t, ok)
}

func TestPoller_ContextCancellation(t *testing.T) {
	f := setupTestFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	f.poller.Start(ctx, "t1")
	require.Eventually(t, func() bool { return f.fetcher.count("t1") > 0 }, time.Second, tick)
	cancel()

	time.Sleep(5 * tick)
	stopped := f.fetcher.count("t1")
	time.Sleep(10 * tick)
	require.Equal(t, stopped, f.fetcher.count("t1"))
	require.Empty(t, f.outcomes)
}

func TestPoller_TakeLast(t *testing.T) {
	f := setupTestFixture(t)
	f.fetcher.script("t1", result{status: "COMPLETED", body: `"3,75"`})

	f.poller.Start(context.Background(), "t1")
	f.awaitOutcome(t)

	o, ok := f.poller.TakeLast()
	require.True(t, ok)
	require.Equal(t, 3.75, o.Grade)

	_, ok = f.poller.TakeLast()
	require.False(t, ok)
}

func TestPoller_ResumeSkipsKnownTasks(t *testing.T) {
	f := setupTestFixture(t)
	f.fetcher.script("stored", result{status: "pending"}, result{status: "completed", body: "4"})

	require.True(t, f.poller.Resume(context.Background(), "stored"))
	// already running
	require.False(t, f.poller.Resume(context.Background(), "stored"))
	require.False(t, f.poller.Resume(context.Background(), "other"))

	o := f.awaitOutcome(t)
	require.Equal(t, 4.0, o.Grade)

	// the outcome stays known after it has been shown
	_, ok := f.poller.TakeLast()
	require.True(t, ok)
	require.False(t, f.poller.Resume(context.Background(), "stored"))
	_, ok = f.poller.Active()
	require.False(t, ok)
	require.Equal(t, 2, f.fetcher.count("stored"))

	require.False(t, f.poller.Resume(context.Background(), ""))
	require.True(t, f.poller.Resume(context.Background(), "newer"))
	id, ok := f.poller.Active()
	require.True(t, ok)
	require.Equal(t, "newer", id)
}

func TestPoller_EmptyTaskIDIgnored(t *testing.T) {
	f := setupTestFixture(t)
	f.poller.Start(context.Background(), "")
	_, ok := f.poller.Active()
	require.False(t, ok)
}

func TestPoller_ContextCancellationReleasesActive(t *testing.T) {
	f := setupTestFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	f.poller.Start(ctx, "t1")
	cancel()

	require.Eventually(t, func() bool {
		_, ok := f.poller.Active()
		return !ok
	}, time.Second, tick)
}
