package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seven011/searchgate/internal/types"
)

func TestBuildViewSingleResult(t *testing.T) {
	resp := &types.SearchResponse{
		Results: []types.SearchResult{
			{Title: "A", Snippet: "s", Score: 0.9, SourceURL: "https://x.test/a"},
		},
		Total: 1,
		Query: "pension deduction",
	}

	view := BuildView(resp)

	require.Len(t, view.Results, 1)
	assert.Equal(t, "pension deduction", view.Query)
	assert.Equal(t, 1, view.Total)

	result := view.Results[0]
	assert.Equal(t, "A", result.Title)
	assert.Equal(t, "s", result.Snippet)
	assert.Equal(t, "0.90", result.Score)
	assert.Equal(t, "x.test", result.Host)
	assert.False(t, result.HasCitations())
	assert.Empty(t, result.CitationLabel)
}

func TestBuildViewPreservesBackendOrder(t *testing.T) {
	resp := &types.SearchResponse{
		Results: []types.SearchResult{
			{Title: "low first", Score: 0.1, SourceURL: "https://x.test/1"},
			{Title: "high second", Score: 0.9, SourceURL: "https://x.test/2"},
		},
		Total: 2,
	}

	view := BuildView(resp)

	require.Len(t, view.Results, 2)
	assert.Equal(t, "low first", view.Results[0].Title)
	assert.Equal(t, "high second", view.Results[1].Title)
}

func TestBuildViewCitations(t *testing.T) {
	t.Run("empty citation list renders no disclosure", func(t *testing.T) {
		resp := &types.SearchResponse{
			Results: []types.SearchResult{
				{Title: "A", SourceURL: "https://x.test/a", Citations: []types.Citation{}},
			},
		}

		result := BuildView(resp).Results[0]
		assert.False(t, result.HasCitations())
		assert.Empty(t, result.CitationLabel)
	})

	t.Run("two citations render count and ordered links", func(t *testing.T) {
		resp := &types.SearchResponse{
			Results: []types.SearchResult{
				{
					Title:     "A",
					SourceURL: "https://x.test/a",
					Citations: []types.Citation{
						{URL: "https://y.test/1", Title: "First source"},
						{URL: "https://y.test/2"},
					},
				},
			},
		}

		result := BuildView(resp).Results[0]
		require.True(t, result.HasCitations())
		assert.Equal(t, "2 citations", result.CitationLabel)
		require.Len(t, result.Citations, 2)
		assert.Equal(t, "First source", result.Citations[0].Label)
		// Missing title falls back to the URL.
		assert.Equal(t, "https://y.test/2", result.Citations[1].Label)
		assert.Equal(t, "https://y.test/2", result.Citations[1].URL)
	})

	t.Run("single citation uses singular label", func(t *testing.T) {
		resp := &types.SearchResponse{
			Results: []types.SearchResult{
				{SourceURL: "https://x.test/a", Citations: []types.Citation{{URL: "https://y.test/1"}}},
			},
		}

		assert.Equal(t, "1 citation", BuildView(resp).Results[0].CitationLabel)
	})
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "0.90", FormatScore(0.9))
	assert.Equal(t, "0.00", FormatScore(0))
	assert.Equal(t, "1.00", FormatScore(0.999))
	assert.Equal(t, "12.35", FormatScore(12.345))
}

func TestDisplayHost(t *testing.T) {
	assert.Equal(t, "docs.example.com", DisplayHost("https://docs.example.com/path?x=1"))
	// Malformed URLs degrade to the raw string instead of aborting the render.
	assert.Equal(t, "://not a url", DisplayHost("://not a url"))
	assert.Equal(t, "", DisplayHost(""))
	assert.Equal(t, "relative/path", DisplayHost("relative/path"))
}

func TestBuildViewMalformedURLKeepsResult(t *testing.T) {
	resp := &types.SearchResponse{
		Results: []types.SearchResult{
			{Title: "bad", SourceURL: "http://%zz"},
			{Title: "good", SourceURL: "https://x.test/ok"},
		},
		Total: 2,
	}

	view := BuildView(resp)

	require.Len(t, view.Results, 2)
	assert.Equal(t, "bad", view.Results[0].Title)
	assert.Equal(t, "x.test", view.Results[1].Host)
}

func TestDisclosureStateIndependence(t *testing.T) {
	state := NewDisclosureState()

	assert.False(t, state.Expanded(0))
	assert.False(t, state.Expanded(1))

	state.Toggle(1)
	assert.False(t, state.Expanded(0), "expanding one result must not affect another")
	assert.True(t, state.Expanded(1))

	state.Toggle(1)
	assert.False(t, state.Expanded(1))
}

func TestBuildViewNilResponse(t *testing.T) {
	view := BuildView(nil)
	require.NotNil(t, view)
	assert.Empty(t, view.Results)
}
