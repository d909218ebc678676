package genesis_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
)

func Test_Default(t *testing.T) {
	gen := genesis.Default()

	if gen.Difficulty != genesis.DefaultDifficulty {
		t.Fatalf("Should default the difficulty to %d, got %d.", genesis.DefaultDifficulty, gen.Difficulty)
	}

	if gen.Algorithm != digest.AlgSHA256 {
		t.Fatalf("Should default the algorithm to %s, got %s.", digest.AlgSHA256, gen.Algorithm)
	}

	if err := gen.Validate(); err != nil {
		t.Fatalf("Should be a valid genesis: %s", err)
	}
}

func Test_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.json")
	doc := `{"date":"2023-11-14T22:13:20Z","difficulty":3,"algorithm":"keccak256"}`
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatalf("Should be able to write the genesis file: %s", err)
	}

	gen, err := genesis.Load(path)
	if err != nil {
		t.Fatalf("Should be able to load the genesis file: %s", err)
	}

	if gen.Difficulty != 3 || gen.Algorithm != digest.AlgKeccak256 {
		t.Fatalf("Should get back the file settings: %+v", gen)
	}

	exp := time.Date(2023, time.November, 14, 22, 13, 20, 0, time.UTC)
	if !gen.Date.Equal(exp) {
		t.Fatalf("Should get back the file date: %v", gen.Date)
	}

	block := gen.Block(digest.Keccak256)
	if block.TimeStamp != 1700000000000 {
		t.Fatalf("Should stamp the genesis block with the date, got %d.", block.TimeStamp)
	}

	if err := block.ValidateGenesis(digest.Keccak256); err != nil {
		t.Fatalf("Should be a valid genesis block: %s", err)
	}

	if _, err := genesis.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("Should not be able to load a missing file.")
	}
}

func Test_Validate(t *testing.T) {
	gen := genesis.Default()
	gen.Difficulty = database.MaxDifficulty + 1
	if err := gen.Validate(); err == nil {
		t.Fatalf("Should not accept a difficulty larger than a digest.")
	}

	gen = genesis.Default()
	gen.Algorithm = "md5"
	if err := gen.Validate(); err == nil {
		t.Fatalf("Should not accept an unknown algorithm.")
	}
}
