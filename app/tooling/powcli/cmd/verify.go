package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	verifyNumber uint64
	verifyHash   string
	verifyNonce  uint64
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check a hash and nonce pair against a block on the node.",
	RunE:  verifyRun,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().Uint64VarP(&verifyNumber, "number", "b", 0, "Number of the block to check.")
	verifyCmd.Flags().StringVarP(&verifyHash, "hash", "s", "", "Candidate hash.")
	verifyCmd.Flags().Uint64VarP(&verifyNonce, "nonce", "n", 0, "Candidate nonce.")
	verifyCmd.MarkFlagRequired("hash")
}

func verifyRun(cmd *cobra.Command, args []string) error {
	req := struct {
		Number uint64 `json:"number"`
		Hash   string `json:"hash"`
		Nonce  uint64 `json:"nonce"`
	}{
		Number: verifyNumber,
		Hash:   verifyHash,
		Nonce:  verifyNonce,
	}

	var resp struct {
		Valid bool `json:"valid"`
	}
	if err := post("/v1/blocks/verify", req, &resp); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "blk[%d]: valid[%t]\n", verifyNumber, resp.Valid)
	return nil
}
