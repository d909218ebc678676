package state

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
)

// QueryBlocks returns a snapshot of the chain in order starting with the
// genesis block.
func (s *State) QueryBlocks() ([]database.Block, error) {
	return s.db.Copy()
}

// QueryBlockByNumber returns the block at the specified position in the
// chain. It returns database.ErrBlockNotFound if there is no such block.
func (s *State) QueryBlockByNumber(number uint64) (database.Block, error) {
	return s.db.GetBlock(number)
}

// QueryChainLength returns the number of blocks including genesis.
func (s *State) QueryChainLength() uint64 {
	return s.db.Count()
}

// VerifyBlockHash reports whether the candidate nonce produces the candidate
// hash for the stored content of the specified block. The block's own nonce
// and hash are not used. It returns database.ErrBlockNotFound if the number is
// out of range.
func (s *State) VerifyBlockHash(number uint64, hash string, nonce uint64) (bool, error) {
	block, err := s.db.GetBlock(number)
	if err != nil {
		return false, err
	}

	// A candidate that isn't hex can never match.
	candidate, err := digest.Normalize(hash)
	if err != nil {
		s.evHandler("state: VerifyBlockHash: blk[%d]: malformed candidate: %s", number, err)
		return false, nil
	}

	computed := block.HashWithNonce(s.hash, nonce)
	s.evHandler("state: VerifyBlockHash: blk[%d]: nonce[%d]: computed[%s]: candidate[%s]", number, nonce, computed, candidate)

	return computed == candidate, nil
}

// ValidateChain recomputes every block hash from its stored fields and
// checks the proof of work and linkage of the whole chain.
func (s *State) ValidateChain() error {
	blocks, err := s.db.Copy()
	if err != nil {
		return err
	}

	return database.ValidateChain(s.hash, blocks, s.evHandler)
}
