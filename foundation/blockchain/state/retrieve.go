package state

import (
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
)

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveGenesisBlock returns a copy of the first block in the chain.
func (s *State) RetrieveGenesisBlock() database.Block {
	return s.db.Genesis()
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveDifficulty returns the difficulty to use when none is provided.
func (s *State) RetrieveDifficulty() uint {
	return s.genesis.Difficulty
}
