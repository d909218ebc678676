// Package genesis maintains the settings a new chain starts with.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
)

// DefaultDifficulty is the difficulty used when a caller does not provide one.
const DefaultDifficulty = 2

// Genesis represents the settings for a new chain.
type Genesis struct {
	Date       time.Time `json:"date"`       // When the genesis block is stamped. Zero means now.
	Difficulty uint      `json:"difficulty"` // How difficult it needs to be to solve the work problem by default.
	Algorithm  string    `json:"algorithm"`  // Name of the digest function blocks are sealed with.
}

// Default returns the settings used when nothing else is configured.
func Default() Genesis {
	return Genesis{
		Difficulty: DefaultDifficulty,
		Algorithm:  digest.AlgSHA256,
	}
}

// Load opens and consumes a genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	gen := Default()
	if err := json.Unmarshal(content, &gen); err != nil {
		return Genesis{}, err
	}

	return gen, nil
}

// Validate checks the settings can be used to start a chain.
func (g Genesis) Validate() error {
	if g.Difficulty > database.MaxDifficulty {
		return fmt.Errorf("difficulty %d is greater than %d", g.Difficulty, database.MaxDifficulty)
	}

	if _, err := digest.New(g.Algorithm); err != nil {
		return err
	}

	return nil
}

// Block constructs the genesis block using the specified digest function.
func (g Genesis) Block(hash digest.Func) database.Block {
	var ts int64
	if !g.Date.IsZero() {
		ts = g.Date.UTC().UnixMilli()
	}

	return database.NewGenesis(hash, ts)
}
