// Package database handles all the lower level support for maintaining the
// chain of blocks: sealing and mining blocks, validating them, and keeping
// them in order through a storage implementation.
package database

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
)

// Set of errors returned by the database api.
var (
	ErrBlockNotFound = errors.New("block not found")
	ErrChainInvalid  = errors.New("chain is invalid")
)

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Storage interface {
	Write(block Block) error
	GetBlock(num uint64) (Block, error)
	Count() uint64
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (Block, error)
	Done() bool
}

// =============================================================================

// Database manages the ordered set of blocks. Reads can happen concurrently
// with each other, writes are exclusive.
type Database struct {
	mu sync.RWMutex

	hash        digest.Func
	genesis     Block
	latestBlock Block
	storage     Storage
	evHandler   func(v string, args ...any)
}

// New constructs a new database. If the storage is empty the genesis block
// is written to it, otherwise the existing blocks are validated and the
// first block becomes the genesis.
func New(hash digest.Func, genesis Block, storage Storage, evHandler func(v string, args ...any)) (*Database, error) {
	if evHandler == nil {
		evHandler = func(string, ...any) {}
	}

	db := Database{
		hash:      hash,
		storage:   storage,
		evHandler: evHandler,
	}

	if storage.Count() == 0 {
		if err := genesis.ValidateGenesis(hash); err != nil {
			return nil, fmt.Errorf("invalid genesis: %w", err)
		}

		if err := storage.Write(genesis); err != nil {
			return nil, fmt.Errorf("writing genesis: %w", err)
		}

		db.genesis = genesis
		db.latestBlock = genesis

		return &db, nil
	}

	// Read all the blocks from storage and make sure they still hold.
	var blocks []Block

	iter := storage.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	if err := ValidateChain(hash, blocks, evHandler); err != nil {
		return nil, err
	}

	db.genesis = blocks[0]
	db.latestBlock = blocks[len(blocks)-1]

	return &db, nil
}

// Close closes the storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// Reset re-initializes the database back to only the genesis block.
func (db *Database) Reset() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.storage.Reset(); err != nil {
		return err
	}

	if err := db.storage.Write(db.genesis); err != nil {
		return err
	}
	db.latestBlock = db.genesis

	return nil
}

// HashFunc returns the digest function blocks are sealed with.
func (db *Database) HashFunc() digest.Func {
	return db.hash
}

// Genesis returns the first block in the chain.
func (db *Database) Genesis() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.genesis
}

// LatestBlock returns the latest block.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.latestBlock
}

// Write validates the block against the latest block and then adds it to
// the end of the chain.
func (db *Database) Write(block Block) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := block.ValidateBlock(db.hash, db.latestBlock, db.evHandler); err != nil {
		return err
	}

	if err := db.storage.Write(block); err != nil {
		return err
	}
	db.latestBlock = block

	return nil
}

// GetBlock locates and returns the contents of the specified block by number.
func (db *Database) GetBlock(num uint64) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if num >= db.storage.Count() {
		return Block{}, fmt.Errorf("%w: number %d", ErrBlockNotFound, num)
	}

	return db.storage.GetBlock(num)
}

// Count returns the number of blocks in the chain including genesis.
func (db *Database) Count() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.storage.Count()
}

// Copy returns a snapshot of every block in the chain, in order.
func (db *Database) Copy() ([]Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	blocks := make([]Block, 0, db.storage.Count())

	iter := db.storage.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}

// ForEach returns an iterator to walk through all the blocks starting with
// the genesis block.
func (db *Database) ForEach() Iterator {
	return db.storage.ForEach()
}
