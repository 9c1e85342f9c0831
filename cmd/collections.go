package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seven011/searchgate/internal/backend"
	appconfig "github.com/seven011/searchgate/internal/config"
)

var (
	collectionsJSON    bool
	collectionsTimeout int
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List document collections available on the search backend",
	Long: `
List the collections visible to the configured backend credential. This
talks to the backend directly, so it needs the same environment as serve
(SEVEN011_BASE_URL and SEVEN011_API_KEY).
`,
	RunE: runCollections,
}

func init() {
	collectionsCmd.Flags().BoolVarP(&collectionsJSON, "json", "j", false, "Output in JSON format")
	collectionsCmd.Flags().IntVar(&collectionsTimeout, "timeout", 30, "Request timeout in seconds")
}

func runCollections(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	client, err := backend.NewClient(backend.NewConfigFromTypes(cfg))
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(collectionsTimeout)*time.Second)
	defer cancel()

	collections, err := client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if collectionsJSON {
		output, err := json.MarshalIndent(collections, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON output: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Found %d collections\n", len(collections))
	for _, collection := range collections {
		if collection.Description != "" {
			fmt.Printf("  %s - %s\n", collection.Name, collection.Description)
		} else {
			fmt.Printf("  %s\n", collection.Name)
		}
	}
	return nil
}
