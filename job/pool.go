package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ogahub/ogalib"
)

// ErrClosed is returned by Submit once Close has been called.
var ErrClosed = errors.New("job: pool closed")

const defaultWorkers = 4

// Pool executes job work on a fixed set of worker goroutines and queues
// finished jobs until the owner collects them with Update.
type Pool struct {
	logger  *slog.Logger
	workers int

	mu        sync.Mutex
	cond      *sync.Cond
	queue     []*Job
	completed []*Job
	closed    bool

	nextID      atomic.Uint64
	outstanding atomic.Int64
	ready       chan struct{}
	group       errgroup.Group
}

// Option configures a Pool.
type Option func(*Pool)

// WithWorkers sets the number of worker goroutines. Values below one are
// ignored.
func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithLogger sets the logger used to report panicking jobs.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPool starts a pool. Call Close to stop its workers.
func NewPool(opts ...Option) *Pool {
	p := &Pool{
		logger:  slog.Default().With("component", "job-pool"),
		workers: defaultWorkers,
		ready:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < p.workers; i++ {
		p.group.Go(p.worker)
	}
	return p
}

// Submit queues a job and returns immediately. work runs on a worker
// goroutine; continuation runs on the goroutine that next calls Update
// after work has returned. Either may be nil.
func (p *Pool) Submit(work, continuation Func) (*Job, error) {
	j := &Job{
		ID:           p.nextID.Add(1),
		Data:         &ogalib.Value{},
		work:         work,
		continuation: continuation,
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	p.outstanding.Add(1)
	p.queue = append(p.queue, j)
	p.mu.Unlock()
	p.cond.Signal()

	return j, nil
}

func (p *Pool) worker() error {
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return nil
		}
		j := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()

		p.run(j)

		p.mu.Lock()
		p.completed = append(p.completed, j)
		p.mu.Unlock()

		select {
		case p.ready <- struct{}{}:
		default:
		}
	}
}

func (p *Pool) run(j *Job) {
	j.setState(Running)
	defer j.setState(Completed)
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("job work panicked", slog.Uint64("job", j.ID), slog.Any("panic", r))
			j.Data.Key("success").Assign(false)
			j.Data.Key("error").Assign(fmt.Sprintf("job panicked: %v", r))
		}
	}()
	if j.work != nil {
		j.work(j)
	}
}

// Update runs the continuation of every job whose work has finished since
// the last call and reports how many it ran. It must be called from the
// owning goroutine, usually once per tick.
func (p *Pool) Update() int {
	p.mu.Lock()
	done := p.completed
	p.completed = nil
	p.mu.Unlock()

	for _, j := range done {
		p.dispatch(j)
	}
	return len(done)
}

func (p *Pool) dispatch(j *Job) {
	j.setState(Dispatched)
	defer func() {
		j.setState(Done)
		p.outstanding.Add(-1)
	}()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("job continuation panicked", slog.Uint64("job", j.ID), slog.Any("panic", r))
		}
	}()
	if j.continuation != nil {
		j.continuation(j)
	}
}

// Outstanding returns the number of submitted jobs whose continuation has
// not run yet.
func (p *Pool) Outstanding() int {
	return int(p.outstanding.Load())
}

// Ready is signalled whenever a job finishes its work. It lets an idle owner
// block instead of polling Update.
func (p *Pool) Ready() <-chan struct{} {
	return p.ready
}

// Drain calls Update until no job is outstanding, including jobs submitted
// by continuations along the way. It returns early with the context error
// if ctx ends first.
func (p *Pool) Drain(ctx context.Context) error {
	for {
		p.Update()
		if p.Outstanding() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.ready:
		}
	}
}

// Close stops accepting jobs, lets the workers finish the queued work and
// waits for them to exit. Continuations of the remaining jobs still run on
// the next Update or Drain.
func (p *Pool) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
	return p.group.Wait()
}
