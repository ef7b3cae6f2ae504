// Package tasks follows backend jobs, such as grade extraction from an
// uploaded attestation, until they reach a terminal status.
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/admissions-portal/portalapi"
	"github.com/rs/zerolog/log"
)

// DefaultInterval is the delay between two status requests.
const DefaultInterval = 3 * time.Second

// StatusFetcher is the slice of the API client the poller needs.
type StatusFetcher interface {
	TaskStatus(ctx context.Context, taskID string) (*portalapi.TaskStatus, error)
}

// Outcome is the terminal result of one poll. State is TaskCompleted with
// Grade set, or TaskFailed with Message set. Err is set when the status
// request itself failed.
type Outcome struct {
	TaskID  string
	State   portalapi.TaskState
	Grade   float64
	Message string
	Err     error
	At      time.Time
}

type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithOnComplete registers a hook run once per terminal outcome, after the
// poll has been released.
func WithOnComplete(fn func(Outcome)) Option {
	return func(p *Poller) {
		p.onComplete = fn
	}
}

// Poller runs at most one poll at a time.
type Poller struct {
	fetcher    StatusFetcher
	interval   time.Duration
	onComplete func(Outcome)

	startMu sync.Mutex // serializes Start and Stop

	mu     sync.Mutex
	gen    uint64
	active string
	cancel context.CancelFunc
	done   chan struct{}
	last   *Outcome

	finished string // task id of the last recorded outcome, kept after TakeLast
}

func NewPoller(fetcher StatusFetcher, opts ...Option) *Poller {
	p := &Poller{fetcher: fetcher, interval: DefaultInterval}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start cancels any running poll, waits for it to exit, then polls taskID
// every interval until a terminal status, a request error, Stop or the
// cancellation of ctx.
func (p *Poller) Start(ctx context.Context, taskID string) {
	if taskID == "" {
		return
	}

	p.startMu.Lock()
	defer p.startMu.Unlock()
	p.startLocked(ctx, taskID)
}

// Resume picks up a task found on a stored record, such as a profile fetched
// on page load. It starts polling taskID only when no poll is running and
// taskID has not already reached an outcome, and reports whether it did.
func (p *Poller) Resume(ctx context.Context, taskID string) bool {
	if taskID == "" {
		return false
	}

	p.startMu.Lock()
	defer p.startMu.Unlock()

	p.mu.Lock()
	known := p.active != "" || p.finished == taskID
	p.mu.Unlock()
	if known {
		return false
	}
	p.startLocked(ctx, taskID)
	return true
}

func (p *Poller) startLocked(ctx context.Context, taskID string) {
	p.stopLocked()

	pollCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.active, p.cancel, p.done = taskID, cancel, done
	p.mu.Unlock()

	log.Debug().Str("taskID", taskID).Dur("interval", p.interval).Msg("Polling task")
	go p.run(pollCtx, gen, taskID, done)
}

// Stop cancels the running poll, if any. No outcome is recorded for it.
func (p *Poller) Stop() {
	p.startMu.Lock()
	defer p.startMu.Unlock()
	p.stopLocked()
}

func (p *Poller) stopLocked() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.gen++
	p.active, p.cancel, p.done = "", nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Active returns the task id being polled.
func (p *Poller) Active() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active, p.active != ""
}

// Last returns the most recent terminal outcome.
func (p *Poller) Last() (Outcome, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return Outcome{}, false
	}
	return *p.last, true
}

// TakeLast returns the most recent outcome and forgets it, so it is shown once.
func (p *Poller) TakeLast() (Outcome, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return Outcome{}, false
	}
	o := *p.last
	p.last = nil
	return o, true
}

func (p *Poller) run(ctx context.Context, gen uint64, taskID string, done chan struct{}) {
	defer close(done)
	defer p.release(gen)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status, err := p.fetcher.TaskStatus(ctx, taskID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			p.finish(gen, Outcome{TaskID: taskID, State: portalapi.TaskFailed, Message: err.Error(), Err: err})
			return
		}

		switch status.State() {
		case portalapi.TaskCompleted:
			grade, err := status.Grade()
			if err != nil {
				log.Warn().Err(err).Str("taskID", taskID).Msg("Completed task has no numeric result")
				p.finish(gen, Outcome{TaskID: taskID, State: portalapi.TaskFailed, Message: portalapi.DefaultMessage, Err: err})
				return
			}
			p.finish(gen, Outcome{TaskID: taskID, State: portalapi.TaskCompleted, Grade: grade})
			return
		case portalapi.TaskFailed:
			p.finish(gen, Outcome{TaskID: taskID, State: portalapi.TaskFailed, Message: status.FailureMessage()})
			return
		}
	}
}

// release forgets the poll started as gen, unless a newer one replaced it.
func (p *Poller) release(gen uint64) {
	p.mu.Lock()
	if p.gen != gen || p.cancel == nil {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.active, p.cancel, p.done = "", nil, nil
	p.mu.Unlock()
	cancel()
}

// finish records o unless the poll was superseded in the meantime.
func (p *Poller) finish(gen uint64, o Outcome) {
	o.At = time.Now()

	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return
	}
	p.last = &o
	p.finished = o.TaskID
	p.mu.Unlock()
	p.release(gen)

	ev := log.Info()
	if o.State != portalapi.TaskCompleted {
		ev = log.Warn().AnErr("cause", o.Err)
	}
	ev.Str("taskID", o.TaskID).Str("state", string(o.State)).Float64("grade", o.Grade).Msg("Task finished")

	if p.onComplete != nil {
		p.onComplete(o)
	}
}
