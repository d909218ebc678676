package cmd

import (
	"fmt"
	"strconv"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var blocksCmd = &cobra.Command{
	Use:   "blocks [number]",
	Short: "Print the chain or a single block from the node.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  blocksRun,
}

func init() {
	rootCmd.AddCommand(blocksCmd)
}

func blocksRun(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		number, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid block number: %w", err)
		}

		var block database.Block
		if err := get(fmt.Sprintf("/v1/blocks/list/%d", number), &block); err != nil {
			return err
		}
		return printJSON(cmd, block)
	}

	var blocks []database.Block
	if err := get("/v1/blocks/list", &blocks); err != nil {
		return err
	}

	for _, block := range blocks {
		fmt.Fprintln(cmd.OutOrStdout(), block)
	}
	return nil
}
