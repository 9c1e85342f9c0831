package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "searchgate",
	Short: "Searchgate - gateway and console for the 0711 hybrid search service",
	Long: `Searchgate fronts the 0711 hybrid search service (BM25 + vector retrieval).
It serves a public search API and console page, normalizing minimal client
queries into the full backend contract while keeping the backend credential
server-side.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Missing .env is fine; the environment may already be set.
		_ = godotenv.Load()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(collectionsCmd)
}
