package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// Fixed values so every digest in these tests is reproducible.
const (
	timeStamp   = int64(1700000000000)
	genesisHash = "431d1bbb8e7d03b2418530b725ceb2b5a9cad11bad55146415603dc33c18daaf"
)

// =============================================================================

func Test_Preimage(t *testing.T) {
	got := string(database.Preimage("hello", "0", timeStamp, 7))
	exp := "hello017000000000007"

	if got != exp {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", exp)
		t.Fatalf("Should concatenate the fields with no separators.")
	}
}

func Test_Genesis(t *testing.T) {
	gen := database.NewGenesis(digest.SHA256, timeStamp)

	if gen.Hash != genesisHash {
		t.Logf("got: %s", gen.Hash)
		t.Logf("exp: %s", genesisHash)
		t.Fatalf("Should get back the right genesis hash.")
	}

	if gen.Number != 0 || gen.Nonce != 0 || gen.Difficulty != 0 {
		t.Fatalf("Should have a zero number, nonce and difficulty: %s", gen)
	}

	if !gen.IsGenesis() {
		t.Fatalf("Should be recognized as the genesis block.")
	}

	if err := gen.ValidateGenesis(digest.SHA256); err != nil {
		t.Fatalf("Should be a valid genesis block: %s", err)
	}

	again := database.NewGenesis(digest.SHA256, timeStamp)
	if again.Hash != gen.Hash {
		t.Fatalf("Should get back the same genesis hash twice.")
	}
}

func Test_POW(t *testing.T) {
	type table struct {
		name       string
		payload    string
		prevHash   string
		difficulty uint
		nonce      uint64
		hash       string
	}

	tt := []table{
		{"zero", "hello", "0", 0, 0, "d4fad21e0fb38cf765a2218c2a4f0246eb56050daf990292e6b348f2da88e5b0"},
		{"one", "hello", "0", 1, 45, "0b2a90796ed606d5362da6aa0f7e2fbdd1b2ed32fa723a6654cdd6014d8b7240"},
		{"two", "hello", "0", 2, 665, "0014f8f9afc70b422f34288105b41547712ae57db9fafbb493d512fda765bedc"},
		{"three", "hello", "0", 3, 3860, "00022ca18b43206fdd109f913254757c622ef9987f0dba256a3b7e0f3bf1615f"},
		{"lucky", "x", "0", 1, 0, "0a312e1439d86c4ee2bde9452b60137ce606cd07459c61812efd75f9c03a88c4"},
		{"overshoot", "blockchain", "0", 1, 35, "005157b088b704a4d6e516471219b6c1759fa7b85b5a73a8ac6ab078773ecb49"},
		{"linked", "hello", genesisHash, 2, 356, "00469ad347c8ed2a8363129f01f7bb5234b167f0cc979ebdcd587b93dddad12a"},
	}

	t.Log("Given the need to mine blocks at different difficulties.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen mining %q at difficulty %d.", testID, tst.payload, tst.difficulty)
				{
					draft := database.NewBlock(digest.SHA256, 1, tst.payload, tst.prevHash, timeStamp)

					result, err := database.POW(context.Background(), database.POWArgs{
						Hash:       digest.SHA256,
						Block:      draft,
						Difficulty: tst.difficulty,
					})
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to mine the block: %s", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to mine the block.", success, testID)

					if result.Block.Nonce != tst.nonce {
						t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, result.Block.Nonce)
						t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, tst.nonce)
						t.Fatalf("\t%s\tTest %d:\tShould find the smallest nonce.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould find the smallest nonce.", success, testID)

					if result.Block.Hash != tst.hash {
						t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, result.Block.Hash)
						t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.hash)
						t.Fatalf("\t%s\tTest %d:\tShould get back the right hash.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right hash.", success, testID)

					if result.Attempts != tst.nonce+1 {
						t.Fatalf("\t%s\tTest %d:\tShould take nonce+1 attempts, got %d.", failed, testID, result.Attempts)
					}
					t.Logf("\t%s\tTest %d:\tShould take nonce+1 attempts.", success, testID)

					if result.Block.Difficulty != tst.difficulty {
						t.Fatalf("\t%s\tTest %d:\tShould record the difficulty, got %d.", failed, testID, result.Block.Difficulty)
					}
					t.Logf("\t%s\tTest %d:\tShould record the difficulty.", success, testID)

					if !database.IsHashSolved(tst.difficulty, result.Block.Hash) {
						t.Fatalf("\t%s\tTest %d:\tShould produce a solved hash.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould produce a solved hash.", success, testID)

					if draft.Nonce != 0 || draft.Difficulty != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould not change the draft block.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould not change the draft block.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_POWDeterministic(t *testing.T) {
	draft := database.NewBlock(digest.SHA256, 1, "hello", genesisHash, timeStamp)
	args := database.POWArgs{
		Hash:       digest.SHA256,
		Block:      draft,
		Difficulty: 3,
	}

	first, err := database.POW(context.Background(), args)
	if err != nil {
		t.Fatalf("Should be able to mine the block: %s", err)
	}

	second, err := database.POW(context.Background(), args)
	if err != nil {
		t.Fatalf("Should be able to mine the block again: %s", err)
	}

	if first.Block != second.Block {
		t.Logf("got: %s", second.Block)
		t.Logf("exp: %s", first.Block)
		t.Fatalf("Should get back the same block twice.")
	}

	const hash = "0000f2d03f1191de534e89f2826a4d782e29af526a5efa63be316aa6dd0c1bde"
	if first.Block.Nonce != 1408 || first.Block.Hash != hash {
		t.Logf("got: %d %s", first.Block.Nonce, first.Block.Hash)
		t.Logf("exp: %d %s", 1408, hash)
		t.Fatalf("Should get back the right solution.")
	}
}

func Test_POWErrors(t *testing.T) {
	draft := database.NewBlock(digest.SHA256, 1, "hello", "0", timeStamp)

	t.Log("Given the need to stop mining that can't or shouldn't complete.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the context is already cancelled.", testID)
		{
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := database.POW(ctx, database.POWArgs{Hash: digest.SHA256, Block: draft, Difficulty: 1})
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("\t%s\tTest %d:\tShould get back a cancelled error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get back a cancelled error.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the difficulty can't be solved in time.", testID)
		{
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			start := time.Now()
			_, err := database.POW(ctx, database.POWArgs{Hash: digest.SHA256, Block: draft, Difficulty: database.MaxDifficulty})
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("\t%s\tTest %d:\tShould get back a deadline error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get back a deadline error.", success, testID)

			if time.Since(start) > 5*time.Second {
				t.Fatalf("\t%s\tTest %d:\tShould stop promptly after the deadline.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould stop promptly after the deadline.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the attempt budget runs out.", testID)
		{
			_, err := database.POW(context.Background(), database.POWArgs{Hash: digest.SHA256, Block: draft, Difficulty: 3, MaxAttempts: 10})
			if !errors.Is(err, database.ErrMiningExhausted) {
				t.Fatalf("\t%s\tTest %d:\tShould get back an exhausted error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get back an exhausted error.", success, testID)

			result, err := database.POW(context.Background(), database.POWArgs{Hash: digest.SHA256, Block: draft, Difficulty: 3, MaxAttempts: 3861})
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould solve on the last allowed attempt: %s", failed, testID, err)
			}
			if result.Block.Nonce != 3860 {
				t.Fatalf("\t%s\tTest %d:\tShould solve on the last allowed attempt, got nonce %d.", failed, testID, result.Block.Nonce)
			}
			t.Logf("\t%s\tTest %d:\tShould solve on the last allowed attempt.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the difficulty is larger than a digest.", testID)
		{
			_, err := database.POW(context.Background(), database.POWArgs{Hash: digest.SHA256, Block: draft, Difficulty: database.MaxDifficulty + 1})
			if !errors.Is(err, database.ErrInvalidDifficulty) {
				t.Fatalf("\t%s\tTest %d:\tShould get back an invalid difficulty error: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get back an invalid difficulty error.", success, testID)
		}
	}
}

func Test_IsHashSolved(t *testing.T) {
	const hash = "0014f8f9afc70b422f34288105b41547712ae57db9fafbb493d512fda765bedc"

	tt := []struct {
		difficulty uint
		hash       string
		solved     bool
	}{
		{0, hash, true},
		{1, hash, true},
		{2, hash, true},
		{3, hash, false},
		{0, "00", false},
		{database.MaxDifficulty + 1, hash, false},
	}

	for _, tst := range tt {
		if got := database.IsHashSolved(tst.difficulty, tst.hash); got != tst.solved {
			t.Fatalf("Should get %t for difficulty %d and hash %q.", tst.solved, tst.difficulty, tst.hash)
		}
	}
}

func Test_ValidateChain(t *testing.T) {
	blocks := mineChain(t)

	if err := database.ValidateChain(digest.SHA256, blocks, nil); err != nil {
		t.Fatalf("Should be able to validate a mined chain: %s", err)
	}

	tamper := []struct {
		name   string
		change func(blocks []database.Block)
	}{
		{"payload", func(b []database.Block) { b[1].Payload = "tampered" }},
		{"nonce", func(b []database.Block) { b[2].Nonce++ }},
		{"timestamp", func(b []database.Block) { b[3].TimeStamp++ }},
		{"link", func(b []database.Block) { b[2].PrevBlockHash = b[0].Hash }},
		{"difficulty", func(b []database.Block) { b[1].Difficulty = 3 }},
		{"genesis", func(b []database.Block) { b[0].Payload = "Genesis" }},
		{"number", func(b []database.Block) { b[3].Number = 7 }},
	}

	for _, tst := range tamper {
		cp := make([]database.Block, len(blocks))
		copy(cp, blocks)
		tst.change(cp)

		err := database.ValidateChain(digest.SHA256, cp, nil)
		if !errors.Is(err, database.ErrChainInvalid) {
			t.Fatalf("Should detect a %s change: %v", tst.name, err)
		}
	}

	if err := database.ValidateChain(digest.SHA256, nil, nil); !errors.Is(err, database.ErrChainInvalid) {
		t.Fatalf("Should not accept an empty chain: %v", err)
	}
}

// =============================================================================

// mineChain builds a genesis block plus three blocks mined at difficulty 2.
func mineChain(t *testing.T) []database.Block {
	expected := []struct {
		payload string
		nonce   uint64
		hash    string
	}{
		{"first", 45, "00e336f1dcb013e8ff9c67865f2f40686956d0e808ce2af568fb01aff18c0438"},
		{"second", 89, "002bb2b58a2df9d58b90d5dd1ecd7a44b356cab6d25dcadf239eb6ad5152ce3c"},
		{"third", 294, "0061bbd164fb8d934b2b0eb0085522344ddbe3ccf7ab0b6b1772d9eeca49bd5d"},
	}

	blocks := []database.Block{database.NewGenesis(digest.SHA256, timeStamp)}

	for i, exp := range expected {
		prev := blocks[len(blocks)-1]
		draft := database.NewBlock(digest.SHA256, prev.Number+1, exp.payload, prev.Hash, timeStamp+int64(i+1))

		result, err := database.POW(context.Background(), database.POWArgs{
			Hash:       digest.SHA256,
			Block:      draft,
			Difficulty: 2,
		})
		if err != nil {
			t.Fatalf("Should be able to mine block %q: %s", exp.payload, err)
		}

		if result.Block.Nonce != exp.nonce || result.Block.Hash != exp.hash {
			t.Logf("got: %d %s", result.Block.Nonce, result.Block.Hash)
			t.Logf("exp: %d %s", exp.nonce, exp.hash)
			t.Fatalf("Should get back the right solution for %q.", exp.payload)
		}

		blocks = append(blocks, result.Block)
	}

	return blocks
}
