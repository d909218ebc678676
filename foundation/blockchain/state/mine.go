package state

import (
	"context"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// MineNewBlock appends a new block holding the payload to the chain. The
// block is linked to the latest block and mined at the specified difficulty.
// The mining can be cancelled through the context.
func (s *State) MineNewBlock(ctx context.Context, payload string, difficulty uint) (database.POWResult, error) {
	s.evHandler("state: MineNewBlock: MINING: wait for writer")

	// Only one block can be mined against the tip of the chain at a time.
	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		return database.POWResult{}, ctx.Err()
	}
	defer func() { <-s.writer }()

	latestBlock := s.db.LatestBlock()
	draft := database.NewBlock(s.hash, latestBlock.Number+1, payload, latestBlock.Hash, 0)

	s.evHandler("state: MineNewBlock: MINING: perform POW: blk[%d]: difficulty[%d]", draft.Number, difficulty)

	result, err := database.POW(ctx, database.POWArgs{
		Hash:        s.hash,
		Block:       draft,
		Difficulty:  difficulty,
		MaxAttempts: s.maxAttempts,
		EvHandler:   s.evHandler,
	})
	if err != nil {
		return database.POWResult{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.POWResult{}, ctx.Err()
	}

	s.evHandler("state: MineNewBlock: MINING: write block")

	if err := s.db.Write(result.Block); err != nil {
		return database.POWResult{}, err
	}

	s.evHandler("viewer: block mined: %s: elapsed[%v]: attempts[%d]", result.Block, result.Duration, result.Attempts)

	return result, nil
}

// SimulateMine mines a block built from the specified fields without adding
// it to the chain. A timestamp of zero means the current time is used.
func (s *State) SimulateMine(ctx context.Context, payload string, prevBlockHash string, timeStamp int64, difficulty uint) (database.POWResult, error) {
	s.evHandler("state: SimulateMine: MINING: perform POW: difficulty[%d]", difficulty)

	draft := database.NewBlock(s.hash, 0, payload, prevBlockHash, timeStamp)

	result, err := database.POW(ctx, database.POWArgs{
		Hash:        s.hash,
		Block:       draft,
		Difficulty:  difficulty,
		MaxAttempts: s.maxAttempts,
		EvHandler:   s.evHandler,
	})
	if err != nil {
		return database.POWResult{}, err
	}

	s.evHandler("viewer: block simulated: hash[%s]: nonce[%d]: elapsed[%v]", result.Block.Hash, result.Block.Nonce, result.Duration)

	return result, nil
}

// ComputeHash calculates the digest for the specified block fields.
func (s *State) ComputeHash(payload string, prevBlockHash string, timeStamp int64, nonce uint64) string {
	hash := s.hash(database.Preimage(payload, prevBlockHash, timeStamp, nonce))

	s.evHandler("state: ComputeHash: %s(%q + %q + \"%d\" + \"%d\") = %s", s.genesis.Algorithm, payload, prevBlockHash, timeStamp, nonce, hash)

	return hash
}
