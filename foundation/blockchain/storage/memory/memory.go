// Package memory implements the ability to read and write blocks to memory
// using a slice.
package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// Memory represents the storage implementation for reading and storing
// blocks in memory using a slice. This implements the database.Storage
// interface.
type Memory struct {
	mu     sync.RWMutex
	blocks []database.Block
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write takes the specified block and stores it in memory. Blocks must be
// written in number order starting with zero.
func (m *Memory) Write(block database.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if uint64(len(m.blocks)) != block.Number {
		return fmt.Errorf("block is out of order, got %d, exp %d", block.Number, len(m.blocks))
	}

	m.blocks = append(m.blocks, block)

	return nil
}

// GetBlock searches the blockchain to locate and return the contents of
// the specified block by number.
func (m *Memory) GetBlock(num uint64) (database.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if num >= uint64(len(m.blocks)) {
		return database.Block{}, fmt.Errorf("%w: number %d", database.ErrBlockNotFound, num)
	}

	return m.blocks[num], nil
}

// Count returns the number of blocks stored.
func (m *Memory) Count() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return uint64(len(m.blocks))
}

// ForEach returns an iterator to walk through all the blocks
// starting with block number 0.
func (m *Memory) ForEach() database.Iterator {
	return &memoryIterator{storage: m}
}

// Reset will clear out the blockchain.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = nil
	return nil
}

// =============================================================================

// memoryIterator represents the iteration implementation for walking
// through and reading blocks in memory. This implements the database
// Iterator interface.
type memoryIterator struct {
	storage *Memory // Access to the storage API.
	current uint64  // Current block number being iterated over.
	eoc     bool    // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from memory.
func (mi *memoryIterator) Next() (database.Block, error) {
	if mi.eoc {
		return database.Block{}, errors.New("end of chain")
	}

	block, err := mi.storage.GetBlock(mi.current)
	if err != nil {
		mi.eoc = true
	}

	mi.current++

	return block, err
}

// Done returns the end of chain value.
func (mi *memoryIterator) Done() bool {
	return mi.eoc
}
