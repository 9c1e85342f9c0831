package render

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/seven011/searchgate/internal/types"
)

// View is the display projection of a search response. Results keep the
// order the backend returned them in.
type View struct {
	Query   string
	Total   int
	Results []Result
}

// Result is one displayable hit.
type Result struct {
	Title         string
	Snippet       string
	Score         string
	SourceURL     string
	Host          string
	DocType       string
	CitationLabel string
	Citations     []Citation
}

// Citation is a displayable provenance link. Label falls back to the URL
// when the backend supplied no title.
type Citation struct {
	Label string
	URL   string
}

// HasCitations reports whether the disclosure control should be shown.
func (r *Result) HasCitations() bool {
	return len(r.Citations) > 0
}

// BuildView projects a search response into its display form. It is
// deterministic and touches nothing outside its arguments.
func BuildView(resp *types.SearchResponse) *View {
	if resp == nil {
		return &View{}
	}

	view := &View{
		Query:   resp.Query,
		Total:   resp.Total,
		Results: make([]Result, 0, len(resp.Results)),
	}

	for _, result := range resp.Results {
		view.Results = append(view.Results, buildResult(result))
	}

	return view
}

func buildResult(result types.SearchResult) Result {
	display := Result{
		Title:     result.Title,
		Snippet:   result.Snippet,
		Score:     FormatScore(result.Score),
		SourceURL: result.SourceURL,
		Host:      DisplayHost(result.SourceURL),
		DocType:   result.DocType,
	}

	// An empty citation list means "no citations": no count, no disclosure.
	if len(result.Citations) > 0 {
		display.CitationLabel = citationLabel(len(result.Citations))
		display.Citations = make([]Citation, 0, len(result.Citations))
		for _, c := range result.Citations {
			label := strings.TrimSpace(c.Title)
			if label == "" {
				label = c.URL
			}
			display.Citations = append(display.Citations, Citation{
				Label: label,
				URL:   c.URL,
			})
		}
	}

	return display
}

// FormatScore renders a relevance score with fixed two-decimal precision.
func FormatScore(score float64) string {
	return fmt.Sprintf("%.2f", score)
}

// DisplayHost derives the host label shown next to a result. A malformed
// source URL degrades to the raw string so a single bad result cannot
// abort rendering of the whole list.
func DisplayHost(sourceURL string) string {
	parsed, err := url.Parse(sourceURL)
	if err != nil || parsed.Hostname() == "" {
		return strings.TrimSpace(sourceURL)
	}
	return parsed.Hostname()
}

func citationLabel(count int) string {
	if count == 1 {
		return "1 citation"
	}
	return fmt.Sprintf("%d citations", count)
}

// DisclosureState tracks which results have their citation list expanded,
// keyed by result index. It is owned by the renderer's caller, not by the
// result data: each result's flag is independent of every other.
type DisclosureState map[int]bool

// NewDisclosureState returns a state with every disclosure collapsed.
func NewDisclosureState() DisclosureState {
	return make(DisclosureState)
}

// Toggle flips the expanded flag for a single result.
func (d DisclosureState) Toggle(index int) {
	d[index] = !d[index]
}

// Expanded reports whether a result's citation list is open.
func (d DisclosureState) Expanded(index int) bool {
	return d[index]
}
