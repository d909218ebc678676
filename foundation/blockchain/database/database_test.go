package database_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
	"github.com/ardanlabs/powchain/foundation/blockchain/storage/memory"
)

func Test_Database(t *testing.T) {
	blocks := mineChain(t)

	t.Log("Given the need to keep an ordered chain of blocks.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen starting with empty storage.", testID)
		{
			db, err := database.New(digest.SHA256, blocks[0], memory.New(), nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to construct the database: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to construct the database.", success, testID)

			if db.Count() != 1 || db.LatestBlock() != blocks[0] || db.Genesis() != blocks[0] {
				t.Fatalf("\t%s\tTest %d:\tShould only hold the genesis block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould only hold the genesis block.", success, testID)

			for _, block := range blocks[1:] {
				if err := db.Write(block); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to write %s: %s", failed, testID, block, err)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould be able to write the mined blocks.", success, testID)

			if err := db.Write(blocks[2]); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould not be able to write a block twice.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not be able to write a block twice.", success, testID)

			bad := blocks[3]
			bad.Number = 4
			if err := db.Write(bad); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould not be able to write an unlinked block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not be able to write an unlinked block.", success, testID)

			got, err := db.Copy()
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to copy the chain: %s", failed, testID, err)
			}
			if len(got) != len(blocks) {
				t.Fatalf("\t%s\tTest %d:\tShould copy %d blocks, got %d.", failed, testID, len(blocks), len(got))
			}
			for i := range blocks {
				if got[i] != blocks[i] {
					t.Fatalf("\t%s\tTest %d:\tShould copy block %d in order.", failed, testID, i)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould be able to copy the chain in order.", success, testID)

			got[1].Payload = "tampered"
			if b, _ := db.GetBlock(1); b.Payload != "first" {
				t.Fatalf("\t%s\tTest %d:\tShould not change stored blocks through a copy.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not change stored blocks through a copy.", success, testID)

			if _, err := db.GetBlock(uint64(len(blocks))); !errors.Is(err, database.ErrBlockNotFound) {
				t.Fatalf("\t%s\tTest %d:\tShould get a not found error past the end: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get a not found error past the end.", success, testID)

			if err := db.Reset(); err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to reset: %s", failed, testID, err)
			}
			if db.Count() != 1 || db.LatestBlock() != blocks[0] {
				t.Fatalf("\t%s\tTest %d:\tShould only hold the genesis block after a reset.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould only hold the genesis block after a reset.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen starting with existing storage.", testID)
		{
			storage := memory.New()
			for _, block := range blocks {
				if err := storage.Write(block); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to seed the storage: %s", failed, testID, err)
				}
			}

			db, err := database.New(digest.SHA256, database.NewGenesis(digest.SHA256, 0), storage, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to load the chain: %s", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to load the chain.", success, testID)

			if db.Genesis() != blocks[0] || db.LatestBlock() != blocks[3] {
				t.Fatalf("\t%s\tTest %d:\tShould use the stored genesis and latest block.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould use the stored genesis and latest block.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen existing storage has been tampered with.", testID)
		{
			storage := memory.New()
			for _, block := range blocks {
				if block.Number == 2 {
					block.Payload = "tampered"
				}
				if err := storage.Write(block); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to seed the storage: %s", failed, testID, err)
				}
			}

			_, err := database.New(digest.SHA256, blocks[0], storage, nil)
			if !errors.Is(err, database.ErrChainInvalid) {
				t.Fatalf("\t%s\tTest %d:\tShould refuse to load the chain: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse to load the chain.", success, testID)
		}
	}
}
