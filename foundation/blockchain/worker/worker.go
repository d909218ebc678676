// Package worker implements background mining for the blockchain.
package worker

import (
	"sync"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/state"
)

// maxMiningRequests represents the default number of mining requests that
// can be queued before new requests are rejected.
const maxMiningRequests = 100

// Config represents the settings for the worker.
type Config struct {
	QueueSize     int           // Zero means maxMiningRequests.
	MiningTimeout time.Duration // Zero means a mining operation has no deadline.
}

// =============================================================================

// Worker manages the POW workflows for the blockchain.
type Worker struct {
	state         *state.State
	wg            sync.WaitGroup
	shut          chan struct{}
	startMining   chan state.MiningRequest
	cancelMining  chan bool
	miningTimeout time.Duration
	evHandler     state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, evHandler state.EventHandler, cfg Config) *Worker {
	if evHandler == nil {
		evHandler = func(string, ...any) {}
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = maxMiningRequests
	}

	w := Worker{
		state:         st,
		shut:          make(chan struct{}),
		startMining:   make(chan state.MiningRequest, queueSize),
		cancelMining:  make(chan bool, 1),
		miningTimeout: cfg.MiningTimeout,
		evHandler:     evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Load the set of operations we need to run.
	operations := []func(){
		w.miningOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for range g {
		<-hasStarted
	}

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: signal cancel mining")
	w.SignalCancelMining()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalStartMining queues a mining operation. If the queue is full the
// request is rejected with state.ErrWorkerBusy.
func (w *Worker) SignalStartMining(req state.MiningRequest) error {
	if w.isShutdown() {
		return state.ErrWorkerBusy
	}

	select {
	case w.startMining <- req:
	default:
		w.evHandler("worker: SignalStartMining: queue full, request rejected")
		return state.ErrWorkerBusy
	}

	w.evHandler("worker: SignalStartMining: mining signaled")
	return nil
}

// SignalCancelMining signals the G executing the runMiningOperation function
// to stop immediately.
func (w *Worker) SignalCancelMining() {
	select {
	case w.cancelMining <- true:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}
