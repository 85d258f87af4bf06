package usage

import (
	"context"
	"sync"
	"time"

	"github.com/Egham-7/numseq/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

const recordTimeout = 5 * time.Second

// Worker records operations on a fixed pool of goroutines so handlers never wait on the database
type Worker struct {
	service *Service
	tasks   chan models.RecordOperationParams
	wg      sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// NewWorker creates a new recording worker with the specified pool size
func NewWorker(service *Service, poolSize, bufferSize int) *Worker {
	w := &Worker{
		service: service,
		tasks:   make(chan models.RecordOperationParams, max(bufferSize, 0)),
	}

	for range max(poolSize, 1) {
		w.wg.Add(1)
		go w.run()
	}

	return w
}

// Submit queues params for recording. It never blocks: when the buffer is full the record is dropped.
func (w *Worker) Submit(params models.RecordOperationParams) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		fiberlog.Warnf("[%s] Worker stopped, cannot submit operation record", params.RequestID)
		return
	}

	select {
	case w.tasks <- params:
	default:
		fiberlog.Warnf("[%s] Operation log buffer full, dropping record", params.RequestID)
	}
}

func (w *Worker) run() {
	defer w.wg.Done()

	for params := range w.tasks {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if _, err := w.service.RecordOperation(ctx, params); err != nil {
			fiberlog.Errorf("[%s] Failed to record operation: %v", params.RequestID, err)
		}
		cancel()
	}
}

// Stop drains queued records and waits for the pool to exit
func (w *Worker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.tasks)
	w.mu.Unlock()

	w.wg.Wait()
}
