package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Ask the node to validate the whole chain.",
	RunE:  validateRun,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateRun(cmd *cobra.Command, args []string) error {
	var resp struct {
		Valid  bool   `json:"valid"`
		Blocks uint64 `json:"blocks"`
		Error  string `json:"error"`
	}
	if err := get("/v1/chain/validate", &resp); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "blocks[%d]: valid[%t]\n", resp.Blocks, resp.Valid)
	if !resp.Valid {
		return errors.New(resp.Error)
	}
	return nil
}
