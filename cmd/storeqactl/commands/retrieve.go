package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/storeqa/internal/domain/intent"
)

var retrieveIntent string

var retrieveCmd = &cobra.Command{
	Use:   "retrieve <question>",
	Short: "Show the evidence and context collected for a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		tag, err := resolveIntent(retrieveIntent, question)
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Retriever.Retrieve(cmd.Context(), question, tag)
		if err != nil {
			return err
		}
		return printRetrieve(cmd.OutOrStdout(), string(tag), res, jsonOut)
	},
}

func init() {
	retrieveCmd.Flags().StringVar(&retrieveIntent, "intent", "", "intent override (default: classified from the question)")
	rootCmd.AddCommand(retrieveCmd)
}

func resolveIntent(flag, question string) (intent.Tag, error) {
	if flag == "" {
		return intent.Classify(question), nil
	}
	tag := intent.Tag(strings.ToLower(flag))
	if !tag.IsValid() {
		return "", fmt.Errorf("unknown intent %q", flag)
	}
	return tag, nil
}
