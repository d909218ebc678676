// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
)

// ErrWorkerBusy is returned when a mining request can't be queued.
var ErrWorkerBusy = errors.New("mining queue is full")

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of mining and validating blocks.
type EventHandler func(v string, args ...any)

// MiningRequest represents a request to append a new block to the chain.
type MiningRequest struct {
	Payload    string
	Difficulty uint
}

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining in the background.
type Worker interface {
	Shutdown()
	SignalStartMining(req MiningRequest) error
	SignalCancelMining()
}

// =============================================================================

// Config represents the configuration required to start the blockchain.
type Config struct {
	Genesis     genesis.Genesis
	Storage     database.Storage
	MaxAttempts uint64 // Zero means mining is unbounded.
	EvHandler   EventHandler
}

// State manages the blockchain database.
type State struct {
	evHandler   EventHandler
	genesis     genesis.Genesis
	hash        digest.Func
	maxAttempts uint64

	// writer allows a single append at a time. A channel is used instead of
	// a mutex so a caller waiting its turn can give up when its context ends.
	writer chan struct{}

	db *database.Database

	Worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}

	hash, err := digest.New(cfg.Genesis.Algorithm)
	if err != nil {
		return nil, err
	}

	// Access the database for the blockchain. The genesis block is only
	// written when the storage is empty.
	db, err := database.New(hash, cfg.Genesis.Block(hash), cfg.Storage, ev)
	if err != nil {
		return nil, err
	}

	state := State{
		evHandler:   ev,
		genesis:     cfg.Genesis,
		hash:        hash,
		maxAttempts: cfg.MaxAttempts,
		writer:      make(chan struct{}, 1),
		db:          db,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running.

	return &state, nil
}

// Shutdown cleanly brings the chain down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Make sure the storage is properly closed.
	defer func() {
		s.db.Close()
	}()

	// Stop all mining activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// Truncate resets the chain back to the genesis block.
func (s *State) Truncate() error {
	s.writer <- struct{}{}
	defer func() { <-s.writer }()

	return s.db.Reset()
}
