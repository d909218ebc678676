package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
)

// GenesisPayload is the fixed payload of the first block in every chain.
const GenesisPayload = "Genesis block"

// GenesisPrevHash is the sentinel previous hash reserved for the genesis block.
const GenesisPrevHash = "0"

// MaxDifficulty is the largest difficulty that can ever be solved since a
// digest only has this many hex characters.
const MaxDifficulty = digest.Size

// Set of errors returned by the block and mining api.
var (
	ErrMiningExhausted   = errors.New("mining attempts exhausted without a solution")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
)

// =============================================================================

// Block represents a sealed unit of data in the chain. The Hash field is only
// ever set by NewBlock, NewGenesis and POW, and always equals the digest of the
// payload, previous hash, timestamp and nonce.
type Block struct {
	Number        uint64 `json:"number"`          // Position of the block in the chain.
	Payload       string `json:"payload"`         // Opaque data committed by the block.
	PrevBlockHash string `json:"prev_block_hash"` // Hash of the previous block in the chain.
	TimeStamp     int64  `json:"timestamp"`       // Milliseconds since the unix epoch, fixed before mining.
	Nonce         uint64 `json:"nonce"`           // Value identified to solve the hash solution.
	Difficulty    uint   `json:"difficulty"`      // Number of 0's the hash was solved for.
	Hash          string `json:"hash"`            // Digest of the committed fields.
}

// NewBlock constructs an unmined block with a zero nonce. A timestamp of zero
// means the current time is used.
func NewBlock(hash digest.Func, number uint64, payload string, prevBlockHash string, timeStamp int64) Block {
	if timeStamp == 0 {
		timeStamp = Now()
	}

	b := Block{
		Number:        number,
		Payload:       payload,
		PrevBlockHash: prevBlockHash,
		TimeStamp:     timeStamp,
	}
	b.Hash = b.ComputeHash(hash)

	return b
}

// NewGenesis constructs the first block of a chain. The genesis block is
// seeded directly and is never mined.
func NewGenesis(hash digest.Func, timeStamp int64) Block {
	return NewBlock(hash, 0, GenesisPayload, GenesisPrevHash, timeStamp)
}

// Now returns the current time in the block timestamp format.
func Now() int64 {
	return time.Now().UTC().UnixMilli()
}

// Preimage returns the exact bytes that are hashed for a block. The fields
// are concatenated in a fixed order with no separators.
func Preimage(payload string, prevBlockHash string, timeStamp int64, nonce uint64) []byte {
	var sb strings.Builder
	sb.Grow(len(payload) + len(prevBlockHash) + 40)

	sb.WriteString(payload)
	sb.WriteString(prevBlockHash)
	sb.WriteString(strconv.FormatInt(timeStamp, 10))
	sb.WriteString(strconv.FormatUint(nonce, 10))

	return []byte(sb.String())
}

// ComputeHash recalculates the digest from the committed fields.
func (b Block) ComputeHash(hash digest.Func) string {
	return hash(Preimage(b.Payload, b.PrevBlockHash, b.TimeStamp, b.Nonce))
}

// HashWithNonce calculates the digest this block would have if sealed with
// the specified nonce.
func (b Block) HashWithNonce(hash digest.Func, nonce uint64) string {
	return hash(Preimage(b.Payload, b.PrevBlockHash, b.TimeStamp, nonce))
}

// IsGenesis reports whether this block is the first block of a chain.
func (b Block) IsGenesis() bool {
	return b.Number == 0 && b.PrevBlockHash == GenesisPrevHash
}

// String implements the fmt.Stringer interface.
func (b Block) String() string {
	return fmt.Sprintf("blk[%d]: hash[%s]: nonce[%d]: difficulty[%d]", b.Number, b.Hash, b.Nonce, b.Difficulty)
}

// =============================================================================

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	Hash        digest.Func
	Block       Block
	Difficulty  uint
	MaxAttempts uint64 // Zero means the search is unbounded.
	EvHandler   func(v string, args ...any)
}

// POWResult describes a solved block and the work it took.
type POWResult struct {
	Block    Block
	Attempts uint64
	Duration time.Duration
}

// POW performs the work of mining to find a nonce that solves the
// cryptographic POW puzzle for the specified block. The search starts at a
// nonce of zero and increments by one, so the same block always produces the
// same solution. The block passed in is never modified.
func POW(ctx context.Context, args POWArgs) (POWResult, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(string, ...any) {}
	}

	if args.Difficulty > MaxDifficulty {
		return POWResult{}, fmt.Errorf("%w: %d is greater than %d", ErrInvalidDifficulty, args.Difficulty, MaxDifficulty)
	}

	ev("database: POW: MINING: started: difficulty[%d]", args.Difficulty)
	defer ev("database: POW: MINING: completed")

	start := time.Now()

	// Work on a copy so the caller's draft block is not changed.
	nb := args.Block
	nb.Nonce = 0
	nb.Difficulty = args.Difficulty

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: POW: MINING: attempts[%d]", attempts)
		}

		// Did we timeout trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: POW: MINING: CANCELLED")
			return POWResult{}, ctx.Err()
		}

		// Hash the block and check if we have solved the puzzle.
		hash := nb.ComputeHash(args.Hash)
		if isHashSolved(args.Difficulty, hash) {
			nb.Hash = hash

			ev("database: POW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: nonce[%d]", nb.PrevBlockHash, hash, nb.Nonce)
			ev("database: POW: MINING: attempts[%d]", attempts)

			return POWResult{Block: nb, Attempts: attempts, Duration: time.Since(start)}, nil
		}

		if args.MaxAttempts > 0 && attempts >= args.MaxAttempts {
			ev("database: POW: MINING: EXHAUSTED: attempts[%d]", attempts)
			return POWResult{}, fmt.Errorf("%w: attempts[%d]", ErrMiningExhausted, attempts)
		}

		nb.Nonce++
	}
}

// IsHashSolved checks the hash to make sure it complies with the POW rules.
// We need to match a difficulty number of 0's.
func IsHashSolved(difficulty uint, hash string) bool {
	return isHashSolved(difficulty, hash)
}

func isHashSolved(difficulty uint, hash string) bool {
	if len(hash) != digest.Size {
		return false
	}

	if difficulty > MaxDifficulty {
		return false
	}

	for i := range difficulty {
		if hash[i] != '0' {
			return false
		}
	}

	return true
}

// =============================================================================

// ValidateGenesis checks the block is a well formed genesis block.
func (b Block) ValidateGenesis(hash digest.Func) error {
	if b.Number != 0 {
		return fmt.Errorf("genesis block number is %d", b.Number)
	}

	if b.PrevBlockHash != GenesisPrevHash {
		return fmt.Errorf("genesis previous hash is %q, exp %q", b.PrevBlockHash, GenesisPrevHash)
	}

	if b.Payload != GenesisPayload {
		return fmt.Errorf("genesis payload is %q, exp %q", b.Payload, GenesisPayload)
	}

	if got := b.ComputeHash(hash); got != b.Hash {
		return fmt.Errorf("genesis hash does not match its fields, got %s, exp %s", got, b.Hash)
	}

	return nil
}

// ValidateBlock takes a block and validates it to be included after the
// previous block in the chain.
func (b Block) ValidateBlock(hash digest.Func, previousBlock Block, evHandler func(v string, args ...any)) error {
	if evHandler == nil {
		evHandler = func(string, ...any) {}
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block number is the next number", b.Number)

	nextNumber := previousBlock.Number + 1
	if b.Number != nextNumber {
		return fmt.Errorf("this block is not the next number, got %d, exp %d", b.Number, nextNumber)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: parent hash does match parent block", b.Number)

	if b.PrevBlockHash != previousBlock.Hash {
		return fmt.Errorf("parent block hash doesn't match our known parent, got %s, exp %s", b.PrevBlockHash, previousBlock.Hash)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block hash matches its fields", b.Number)

	if got := b.ComputeHash(hash); got != b.Hash {
		return fmt.Errorf("block hash does not match its fields, got %s, exp %s", got, b.Hash)
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block hash has been solved", b.Number)

	if !isHashSolved(b.Difficulty, b.Hash) {
		return fmt.Errorf("%s invalid block hash for difficulty %d", b.Hash, b.Difficulty)
	}

	return nil
}

// ValidateChain checks every block from genesis forward by recomputing each
// digest from the stored fields. Nonces are never searched for again.
func ValidateChain(hash digest.Func, blocks []Block, evHandler func(v string, args ...any)) error {
	if len(blocks) == 0 {
		return fmt.Errorf("%w: no genesis block", ErrChainInvalid)
	}

	if err := blocks[0].ValidateGenesis(hash); err != nil {
		return fmt.Errorf("%w: blk[0]: %s", ErrChainInvalid, err)
	}

	for i := 1; i < len(blocks); i++ {
		if err := blocks[i].ValidateBlock(hash, blocks[i-1], evHandler); err != nil {
			return fmt.Errorf("%w: blk[%d]: %s", ErrChainInvalid, i, err)
		}
	}

	return nil
}
