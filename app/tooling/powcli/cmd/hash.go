package cmd

import (
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/ardanlabs/powchain/foundation/blockchain/digest"
	"github.com/spf13/cobra"
)

var (
	hashPayload   string
	hashPrevBlock string
	hashTimeStamp int64
	hashNonce     uint64
)

var hashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Calculate the digest for a set of block fields.",
	RunE:  hashRun,
}

func init() {
	rootCmd.AddCommand(hashCmd)
	hashCmd.Flags().StringVarP(&hashPayload, "payload", "d", "", "Payload of the block.")
	hashCmd.Flags().StringVarP(&hashPrevBlock, "prev", "p", database.GenesisPrevHash, "Hash of the previous block.")
	hashCmd.Flags().Int64VarP(&hashTimeStamp, "timestamp", "t", 0, "Timestamp in milliseconds since the unix epoch.")
	hashCmd.Flags().Uint64VarP(&hashNonce, "nonce", "n", 0, "Nonce of the block.")
}

func hashRun(cmd *cobra.Command, args []string) error {
	hash, err := digest.New(algorithm)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), hash(database.Preimage(hashPayload, hashPrevBlock, hashTimeStamp, hashNonce)))
	return nil
}
