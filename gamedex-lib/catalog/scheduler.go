package catalog

import (
	"context"
	"sync"

	"github.com/mrowan/gamedex/gamedex-lib/logging"
)

// Task is a unit of detached work handed to the scheduler.
type Task func(ctx context.Context)

// Scheduler runs fire-and-forget tasks on a bounded worker pool. A
// scheduled task's outcome is never reported back to the caller, and
// cancelling the caller's request does not cancel the task; this is how
// artwork ingestion is decoupled from the resolve path.
type Scheduler struct {
	tasks  chan Task
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewScheduler starts a pool with the given number of workers.
func NewScheduler(workers int) *Scheduler {
	if workers <= 0 {
		workers = 4
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		tasks:  make(chan Task, workers*16),
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for task := range s.tasks {
		s.run(task)
	}
}

// run executes one task, recovering panics so a bad task cannot take a
// worker down with it.
func (s *Scheduler) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("scheduled task panicked", "panic", r)
		}
	}()
	task(s.ctx)
}

// Schedule queues a task for execution. Returns false if the scheduler is
// closed or the queue is full; the task is dropped and logged either way,
// matching the benign failure semantics of the resolve path. The send is
// non-blocking so a saturated queue never stalls other callers.
func (s *Scheduler) Schedule(task Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		logging.Warn("task dropped, scheduler closed")
		return false
	}
	select {
	case s.tasks <- task:
		return true
	default:
		logging.Warn("task dropped, queue full")
		return false
	}
}

// Close stops accepting tasks, waits for queued tasks to finish, then
// cancels the pool context.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.tasks)
	s.mu.Unlock()

	s.wg.Wait()
	s.cancel()
}
