package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

var (
	ErrQueueFull = errors.New("background queue is full")
	ErrStopped   = errors.New("background runner is stopped")
)

type Config struct {
	Workers   int `envconfig:"WORKERS" default:"4"`
	QueueSize int `envconfig:"QUEUE_SIZE" default:"64"`
}

// Job is detached work nobody waits on. Run gets a context that is never
// canceled by the submitter.
type Job struct {
	Name string
	Run  func(ctx context.Context)
}

// Runner executes jobs on a fixed set of workers fed by a bounded queue.
type Runner struct {
	queue   chan queuedJob
	workers int

	mu      sync.RWMutex
	started bool
	stopped bool
	pool    *pool.Pool
}

type queuedJob struct {
	job      Job
	ctx      context.Context
	queuedAt time.Time
}

func New(cfg Config) *Runner {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = 1
	}
	return &Runner{
		queue:   make(chan queuedJob, size),
		workers: workers,
	}
}

func (r *Runner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.stopped {
		return
	}
	r.started = true

	r.pool = pool.New().WithMaxGoroutines(r.workers)
	for i := 0; i < r.workers; i++ {
		r.pool.Go(r.loop)
	}
	log.Info().Str("component", "worker").Int("workers", r.workers).Int("queue_size", cap(r.queue)).Msg("background runner started")
}

// Submit never blocks. It reports ErrQueueFull or ErrStopped when the job was
// not accepted.
func (r *Runner) Submit(ctx context.Context, job Job) error {
	if job.Run == nil {
		return errors.New("job has no run function")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stopped {
		return ErrStopped
	}

	qj := queuedJob{
		job:      job,
		ctx:      context.WithoutCancel(ctx),
		queuedAt: time.Now(),
	}
	select {
	case r.queue <- qj:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new jobs and waits for queued ones to finish or ctx to end.
func (r *Runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	close(r.queue)
	p := r.pool
	r.mu.Unlock()

	if p == nil {
		return nil
	}

	drained := make(chan struct{})
	go func() {
		p.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		log.Info().Str("component", "worker").Msg("background runner drained")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) loop() {
	for qj := range r.queue {
		r.execute(qj)
	}
}

func (r *Runner) execute(qj queuedJob) {
	logger := log.With().Str("component", "worker").Str("job", qj.job.Name).Logger()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Msg("background job panicked")
		}
	}()

	logger.Debug().Dur("queued_for", time.Since(qj.queuedAt)).Msg("background job started")
	qj.job.Run(qj.ctx)
}
