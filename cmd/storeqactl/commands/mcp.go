package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/storeqa/internal/transport/mcp"
	"github.com/kailas-cloud/storeqa/internal/version"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the assistant as MCP tools over stdio",
	Long: "Serve search_site, recommend_size and ask as Model Context Protocol tools on " +
		"stdin/stdout. Logs go to stderr.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		logger.Info("Serving MCP over stdio")
		return mcp.NewServer(a.Assistant, a.Retriever, version.Version, logger).
			Serve(cmd.Context(), os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
