package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a customer question from the indexed storefront",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		reply, err := a.Assistant.Reply(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printReply(cmd.OutOrStdout(), reply, jsonOut)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
