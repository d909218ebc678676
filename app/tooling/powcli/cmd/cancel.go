package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Stop the block the node's worker is mining.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Status string `json:"status"`
		}
		if err := post("/v1/mining/cancel", nil, &resp); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), resp.Status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
