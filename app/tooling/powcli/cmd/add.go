package cmd

import (
	"fmt"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var (
	addPayload    string
	addDifficulty uint
	addAsync      bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Ask the node to mine a new block onto the chain.",
	RunE:  addRun,
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addPayload, "payload", "d", "", "Payload of the block, empty means a random phrase.")
	addCmd.Flags().UintVarP(&addDifficulty, "difficulty", "x", 0, "Number of leading zeros, unset means the node default.")
	addCmd.Flags().BoolVar(&addAsync, "async", false, "Queue the block with the node's mining worker.")
}

func addRun(cmd *cobra.Command, args []string) error {
	req := struct {
		Payload    string `json:"payload"`
		Difficulty *uint  `json:"difficulty,omitempty"`
	}{
		Payload: addPayload,
	}
	if cmd.Flags().Changed("difficulty") {
		req.Difficulty = &addDifficulty
	}

	if addAsync {
		var resp struct {
			Status string `json:"status"`
		}
		if err := post("/v1/blocks/mine/async", req, &resp); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.Status)
		return nil
	}

	var resp struct {
		Block    database.Block `json:"block"`
		Attempts uint64         `json:"attempts"`
		Message  string         `json:"message"`
	}
	if err := post("/v1/blocks/mine", req, &resp); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
	return printJSON(cmd, resp.Block)
}
