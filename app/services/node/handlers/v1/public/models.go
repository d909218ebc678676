package public

import (
	"fmt"

	"github.com/ardanlabs/powchain/business/sys/validate"
	"github.com/ardanlabs/powchain/foundation/blockchain/database"
)

// mineRequest is the document used to append a new block.
type mineRequest struct {
	Payload    string `json:"payload"`
	Difficulty *uint  `json:"difficulty" validate:"omitempty,lte=64"`
}

// Validate checks the data in the model is considered clean.
func (m mineRequest) Validate() error {
	return validate.Check(m)
}

// verifyRequest is the document used to check a hash and nonce pair
// against a block in the chain.
type verifyRequest struct {
	Number *uint64 `json:"number" validate:"required"`
	Hash   string  `json:"hash" validate:"required,hexadecimal"`
	Nonce  *uint64 `json:"nonce" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (m verifyRequest) Validate() error {
	return validate.Check(m)
}

// hashRequest is the document used to calculate a digest for arbitrary
// block fields.
type hashRequest struct {
	Payload       string `json:"payload"`
	PrevBlockHash string `json:"prev_block_hash"`
	TimeStamp     int64  `json:"timestamp" validate:"gte=0"`
	Nonce         uint64 `json:"nonce"`
}

// Validate checks the data in the model is considered clean.
func (m hashRequest) Validate() error {
	return validate.Check(m)
}

// simulateRequest is the document used to mine a block that is never added
// to the chain.
type simulateRequest struct {
	Payload       string `json:"payload"`
	PrevBlockHash string `json:"prev_block_hash" validate:"required"`
	TimeStamp     int64  `json:"timestamp" validate:"gte=0"`
	Difficulty    *uint  `json:"difficulty" validate:"omitempty,lte=64"`
}

// Validate checks the data in the model is considered clean.
func (m simulateRequest) Validate() error {
	return validate.Check(m)
}

// =============================================================================

type mineResponse struct {
	Block     database.Block `json:"block"`
	Attempts  uint64         `json:"attempts"`
	ElapsedMS int64          `json:"elapsed_ms"`
	Message   string         `json:"message"`
}

func toMineResponse(result database.POWResult) mineResponse {
	return mineResponse{
		Block:     result.Block,
		Attempts:  result.Attempts,
		ElapsedMS: result.Duration.Milliseconds(),
		Message:   fmt.Sprintf("Block mined: %s (Nonce: %d) Elapsed: %v Difficulty: %d", result.Block.Hash, result.Block.Nonce, result.Duration, result.Block.Difficulty),
	}
}

type verifyResponse struct {
	Number uint64 `json:"number"`
	Valid  bool   `json:"valid"`
}

type validateResponse struct {
	Valid  bool   `json:"valid"`
	Blocks uint64 `json:"blocks"`
	Error  string `json:"error,omitempty"`
}

type hashResponse struct {
	Hash string `json:"hash"`
}

type genesisResponse struct {
	Difficulty uint           `json:"difficulty"`
	Algorithm  string         `json:"algorithm"`
	Block      database.Block `json:"block"`
}
