package cmd

import (
	"context"
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
	"github.com/ardanlabs/powchain/foundation/blockchain/genesis"
	"github.com/spf13/cobra"
)

var (
	minePayload     string
	minePrevBlock   string
	mineTimeStamp   int64
	mineDifficulty  uint
	mineMaxAttempts uint64
	mineVerbose     bool
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine a block locally without a node.",
	RunE:  mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().StringVarP(&minePayload, "payload", "d", "", "Payload of the block.")
	mineCmd.Flags().StringVarP(&minePrevBlock, "prev", "p", database.GenesisPrevHash, "Hash of the previous block.")
	mineCmd.Flags().Int64VarP(&mineTimeStamp, "timestamp", "t", 0, "Timestamp in milliseconds, zero means now.")
	mineCmd.Flags().UintVarP(&mineDifficulty, "difficulty", "x", genesis.DefaultDifficulty, "Number of leading zeros to solve for.")
	mineCmd.Flags().Uint64Var(&mineMaxAttempts, "max-attempts", 0, "Give up after this many attempts, zero means unbounded.")
	mineCmd.Flags().BoolVarP(&mineVerbose, "verbose", "v", false, "Print mining progress.")
}

func mineRun(cmd *cobra.Command, args []string) error {
	hash, err := digest.New(algorithm)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	ev := func(v string, args ...any) {
		if mineVerbose {
			fmt.Fprintf(cmd.ErrOrStderr(), v+"\n", args...)
		}
	}

	result, err := database.POW(ctx, database.POWArgs{
		Hash:        hash,
		Block:       database.NewBlock(hash, 0, minePayload, minePrevBlock, mineTimeStamp),
		Difficulty:  mineDifficulty,
		MaxAttempts: mineMaxAttempts,
		EvHandler:   ev,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Block mined: %s (Nonce: %d) Elapsed: %v Difficulty: %d\n", result.Block.Hash, result.Block.Nonce, result.Duration, result.Block.Difficulty)
	return printJSON(cmd, result.Block)
}
