package queue

import (
	"sync"

	"github.com/Glitch-Aswin/DevArticles/middlewares"
)

// Worker is a buffered in-memory queue of functions run by a fixed set of
// goroutines.
type Worker struct {
	tasks    chan func()
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	stopOnce sync.Once
}

// NewWorker returns a Worker whose queue holds up to size pending tasks.
func NewWorker(size int) *Worker {
	return &Worker{tasks: make(chan func(), size)}
}

// Start launches n background goroutines that process queued tasks.
func (w *Worker) Start(n int) {
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for task := range w.tasks {
				w.run(task)
			}
		}()
	}
}

func (w *Worker) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			middlewares.ErrorLogger.Printf("queued task panicked: %v", r)
		}
	}()
	task()
}

// Enqueue adds task without blocking. It returns false when the queue is full
// or stopped, in which case the task is dropped.
func (w *Worker) Enqueue(task func()) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}
	select {
	case w.tasks <- task:
		return true
	default:
		return false
	}
}

// Stop refuses new tasks, drains the queue and waits for the goroutines.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		close(w.tasks)
		w.mu.Unlock()
	})
	w.wg.Wait()
}
