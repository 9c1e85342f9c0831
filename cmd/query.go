package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seven011/searchgate/internal/controller"
	"github.com/seven011/searchgate/internal/render"
)

var (
	queryText     string
	queryEndpoint string
	queryJSON     bool
	queryTimeout  int
	queryExpand   bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run a one-shot search through a running gateway",
	Long: `
Submit a single query to a running searchgate instance and print the ranked
results. The gateway applies defaults (k, hybrid mode, return fields) and
holds the backend credential; this command only ever sees public data.

Examples:
  searchgate query -q "pension deduction"
  searchgate query -q "pension deduction" --expand-citations
  searchgate query -q "Rentenabzug" --endpoint http://gateway.internal:8080 --json
`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "Text query to search for (required)")
	queryCmd.Flags().StringVar(&queryEndpoint, "endpoint", "http://localhost:8080", "Gateway base URL")
	queryCmd.Flags().BoolVarP(&queryJSON, "json", "j", false, "Output the raw response in JSON format")
	queryCmd.Flags().IntVar(&queryTimeout, "timeout", 30, "Request timeout in seconds")
	queryCmd.Flags().BoolVar(&queryExpand, "expand-citations", false, "List each result's citations")

	_ = queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(queryTimeout)*time.Second)
	defer cancel()

	client := controller.NewAPIClient(queryEndpoint, time.Duration(queryTimeout)*time.Second)
	ctl := controller.New(client)

	ctl.UpdateQuery(queryText)
	if !ctl.Submit(ctx) {
		return fmt.Errorf("query cannot be empty")
	}

	state := ctl.State()
	if state.Phase == controller.PhaseError {
		return fmt.Errorf("search failed: %s", state.Message)
	}

	if queryJSON {
		output, err := json.MarshalIndent(state.Response, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON output: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	printResults(render.BuildView(state.Response))
	return nil
}

func printResults(view *render.View) {
	fmt.Printf("\nQuery: %s\n", view.Query)
	fmt.Printf("Found %d results\n", view.Total)

	if len(view.Results) == 0 {
		fmt.Println("  (no results found)")
		return
	}

	// Per-result disclosure; the CLI expands all or none.
	disclosure := render.NewDisclosureState()
	if queryExpand {
		for i := range view.Results {
			disclosure.Toggle(i)
		}
	}

	fmt.Println("\nResults:")
	for i, result := range view.Results {
		fmt.Printf("\n  %d. %s\n", i+1, result.Title)
		fmt.Printf("     Score: %s  Host: %s", result.Score, result.Host)
		if result.DocType != "" {
			fmt.Printf("  [%s]", result.DocType)
		}
		fmt.Println()
		if result.Snippet != "" {
			fmt.Printf("     %s\n", result.Snippet)
		}
		fmt.Printf("     %s\n", result.SourceURL)

		if result.HasCitations() {
			fmt.Printf("     %s\n", result.CitationLabel)
			if disclosure.Expanded(i) {
				for _, citation := range result.Citations {
					fmt.Printf("       - %s (%s)\n", citation.Label, citation.URL)
				}
			}
		}
	}
}
