package memory_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage/memory"
)

func Test_Memory(t *testing.T) {
	m := memory.New()

	gen := database.NewGenesis(digest.SHA256, 1700000000000)
	next := database.NewBlock(digest.SHA256, 1, "hello", gen.Hash, 1700000000001)

	if err := m.Write(next); err == nil {
		t.Fatalf("Should not be able to write a block out of order.")
	}

	if err := m.Write(gen); err != nil {
		t.Fatalf("Should be able to write the genesis block: %s", err)
	}

	if err := m.Write(next); err != nil {
		t.Fatalf("Should be able to write the next block: %s", err)
	}

	if m.Count() != 2 {
		t.Fatalf("Should hold 2 blocks, got %d.", m.Count())
	}

	b, err := m.GetBlock(1)
	if err != nil {
		t.Fatalf("Should be able to get block 1: %s", err)
	}
	if b != next {
		t.Logf("got: %s", b)
		t.Logf("exp: %s", next)
		t.Fatalf("Should get back the block that was written.")
	}

	if _, err := m.GetBlock(2); !errors.Is(err, database.ErrBlockNotFound) {
		t.Fatalf("Should get a not found error past the end: %v", err)
	}

	var got []database.Block
	iter := m.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			t.Fatalf("Should be able to iterate: %s", err)
		}
		got = append(got, block)
	}

	if len(got) != 2 || got[0] != gen || got[1] != next {
		t.Fatalf("Should iterate over the blocks in order.")
	}

	if _, err := iter.Next(); err == nil {
		t.Fatalf("Should get an error iterating past the end of the chain.")
	}

	if err := m.Reset(); err != nil {
		t.Fatalf("Should be able to reset: %s", err)
	}

	if m.Count() != 0 {
		t.Fatalf("Should be empty after a reset, got %d.", m.Count())
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Should be able to close: %s", err)
	}
}
