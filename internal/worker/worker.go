package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Task is a function that represents a background job
type Task func(ctx context.Context) error

const (
	queueSize   = 1000
	taskTimeout = 30 * time.Second
)

type WorkerPool struct {
	taskQueue chan namedTask
	wg        sync.WaitGroup
	mu        sync.RWMutex // guards isClosing against a send on the closed queue
	isClosing bool
	dropped   atomic.Int64
}

type namedTask struct {
	name string
	run  Task
}

func NewWorkerPool(size int) *WorkerPool {
	if size < 1 {
		size = 1
	}
	wp := &WorkerPool{
		taskQueue: make(chan namedTask, queueSize),
	}

	for i := 0; i < size; i++ {
		wp.wg.Add(1)
		go wp.startWorker()
	}

	return wp
}

func (wp *WorkerPool) startWorker() {
	defer wp.wg.Done()
	for task := range wp.taskQueue {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		if err := task.run(ctx); err != nil {
			log.Error().Err(err).Str("task", task.name).Msg("worker task failed")
		}
		cancel()
	}
}

// Submit queues t without blocking. It reports false when the task was
// dropped because the pool is shutting down or the queue is full.
func (wp *WorkerPool) Submit(name string, t Task) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.isClosing {
		log.Warn().Str("task", name).Msg("task submitted during shutdown, dropping")
		wp.dropped.Add(1)
		return false
	}
	select {
	case wp.taskQueue <- namedTask{name: name, run: t}:
		return true
	default:
		log.Warn().Str("task", name).Msg("task queue full, dropping task")
		wp.dropped.Add(1)
		return false
	}
}

// Dropped returns how many tasks were rejected so far.
func (wp *WorkerPool) Dropped() int64 {
	return wp.dropped.Load()
}

// Shutdown closes the queue and waits for workers to finish
func (wp *WorkerPool) Shutdown() {
	wp.mu.Lock()
	if wp.isClosing {
		wp.mu.Unlock()
		return
	}
	wp.isClosing = true
	close(wp.taskQueue)
	wp.mu.Unlock()

	wp.wg.Wait()
}
