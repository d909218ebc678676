package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/state"
)

// miningOperations handles mining.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case req := <-w.startMining:
			if !w.isShutdown() {
				w.runMiningOperation(req)
			}
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation mines the requested payload into a new block at the end
// of the chain.
func (w *Worker) runMiningOperation(req state.MiningRequest) {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	// Drain the cancel mining channel before starting.
	select {
	case <-w.cancelMining:
		w.evHandler("worker: runMiningOperation: MINING: drained cancel channel")
	default:
	}

	// Create a context so mining can be cancelled.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if w.miningTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, w.miningTimeout)
		defer cancel()
	}

	// Can't return from this function until these G's are complete.
	var wg sync.WaitGroup
	wg.Add(2)

	// This G exists to cancel the mining operation.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		select {
		case <-w.cancelMining:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: requested")
		case <-w.shut:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: shutdown")
		case <-ctx.Done():
		}
	}()

	// This G is performing the mining.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		result, err := w.state.MineNewBlock(ctx, req.Payload, req.Difficulty)
		if err != nil {
			switch {
			case errors.Is(err, database.ErrMiningExhausted):
				w.evHandler("viewer: mining: EXHAUSTED: %s", err)
			case errors.Is(err, context.DeadlineExceeded):
				w.evHandler("viewer: mining: TIMEOUT: %v", w.miningTimeout)
			case ctx.Err() != nil:
				w.evHandler("viewer: mining: CANCELLED: by request")
			default:
				w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
			}
			return
		}

		w.evHandler("worker: runMiningOperation: MINING: mining duration[%v]", result.Duration)
	}()

	// Wait for both G's to terminate.
	wg.Wait()
}
