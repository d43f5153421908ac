// Package workerpool generalizes tarsy's pkg/queue (WorkerPool/Worker,
// "one pod processes alert sessions") into spec.md §5's concurrency
// model: "a configurable pool processes automation/agent jobs pulled from
// a bounded channel". Where the teacher's pool claims AlertSession rows
// out of ent, this pool pulls Job values — a function handle plus an
// opaque context map, exactly spec.md §5's phrasing — out of a buffered
// Go channel, since automation/agent jobs here are produced in-process by
// the orchestrator rather than polled from a shared table.
package workerpool

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Job is one unit of work: a function handle plus an opaque context map,
// per spec.md §5.
type Job struct {
	Name    string
	Context map[string]interface{}
	Run     func(ctx context.Context, jobCtx map[string]interface{}) error
}

// WorkerStatus mirrors the teacher's idle/working worker health enum.
type WorkerStatus string

const (
	WorkerStatusIdle    WorkerStatus = "idle"
	WorkerStatusWorking WorkerStatus = "working"
)

// WorkerHealth reports one worker's current state.
type WorkerHealth struct {
	ID              string
	Status          WorkerStatus
	CurrentJobName  string
	JobsProcessed   int
	LastActivity    time.Time
}

// PoolHealth reports the whole pool's state.
type PoolHealth struct {
	TotalWorkers  int
	ActiveWorkers int
	QueueDepth    int
	QueueCapacity int
	WorkerStats   []WorkerHealth
}

// ErrorHandler is invoked with a job's error after Run returns non-nil;
// the pool does not retry jobs itself (callers needing ERP-style bounded
// retry compose it into their Job.Run, per spec.md §4.1's retry policy).
type ErrorHandler func(job Job, err error)

// Pool runs a fixed number of workers consuming jobs from a bounded
// channel. Fresh job contexts per unit of work: the pool never holds a
// caller's resources across jobs (spec.md §5's shared-resource policy).
type Pool struct {
	jobs      chan Job
	onError   ErrorHandler
	workerCnt int

	mu      sync.RWMutex
	workers []*workerState
	wg      sync.WaitGroup
	stopCh  chan struct{}
	stopOnce sync.Once
	started  bool
}

type workerState struct {
	id                string
	mu                sync.RWMutex
	status            WorkerStatus
	currentJobName    string
	jobsProcessed     int
	lastActivity      time.Time
}

// New creates a pool with workerCount workers and a queue buffered to
// queueCapacity. onError may be nil.
func New(workerCount, queueCapacity int, onError ErrorHandler) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	if queueCapacity <= 0 {
		queueCapacity = workerCount
	}
	return &Pool{
		jobs:      make(chan Job, queueCapacity),
		onError:   onError,
		workerCnt: workerCount,
		stopCh:    make(chan struct{}),
	}
}

// Start spawns the worker goroutines. Safe to call once; a second call is
// a no-op.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.workers = make([]*workerState, p.workerCnt)
	for i := 0; i < p.workerCnt; i++ {
		ws := &workerState{id: fmt.Sprintf("worker-%d", i), status: WorkerStatusIdle, lastActivity: time.Now()}
		p.workers[i] = ws
		p.wg.Add(1)
		go p.run(ctx, ws)
	}
	p.mu.Unlock()
}

// Submit enqueues a job, blocking if the queue is full. Returns
// ctx.Err() if ctx is cancelled before the job is accepted.
func (p *Pool) Submit(ctx context.Context, job Job) error {
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop signals the workers to exit and waits for them; a worker finishes
// its current job before exiting (graceful shutdown, matching the
// teacher's pool.Stop). The queue is not closed or drained, so jobs still
// waiting in it may not run.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context, ws *workerState) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.execute(ctx, ws, job)
		}
	}
}

func (p *Pool) execute(ctx context.Context, ws *workerState, job Job) {
	ws.mu.Lock()
	ws.status = WorkerStatusWorking
	ws.currentJobName = job.Name
	ws.mu.Unlock()

	err := job.Run(ctx, job.Context)

	ws.mu.Lock()
	ws.status = WorkerStatusIdle
	ws.currentJobName = ""
	ws.jobsProcessed++
	ws.lastActivity = time.Now()
	ws.mu.Unlock()

	if err != nil && p.onError != nil {
		p.onError(job, err)
	}
}

// Health snapshots the pool's current state.
func (p *Pool) Health() PoolHealth {
	p.mu.RLock()
	workers := p.workers
	p.mu.RUnlock()

	stats := make([]WorkerHealth, len(workers))
	active := 0
	for i, ws := range workers {
		ws.mu.RLock()
		stats[i] = WorkerHealth{ID: ws.id, Status: ws.status, CurrentJobName: ws.currentJobName, JobsProcessed: ws.jobsProcessed, LastActivity: ws.lastActivity}
		if ws.status == WorkerStatusWorking {
			active++
		}
		ws.mu.RUnlock()
	}

	return PoolHealth{
		TotalWorkers:  len(workers),
		ActiveWorkers: active,
		QueueDepth:    len(p.jobs),
		QueueCapacity: cap(p.jobs),
		WorkerStats:   stats,
	}
}
