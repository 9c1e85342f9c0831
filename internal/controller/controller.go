package controller

import (
	"context"
	"strings"
	"sync"

	"github.com/seven011/searchgate/internal/types"
)

// Phase is the lifecycle position of the current submission.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// genericFailure is surfaced when a failure carries no usable description.
const genericFailure = "Search failed"

// RequestState is the controller's externally visible state. Exactly one
// phase is active at a time; Response is set only on success and Message
// only on error.
type RequestState struct {
	Phase    Phase
	Response *types.SearchResponse
	Message  string
}

// SearchClient issues one search request. Implementations talk to the
// gateway's /api/search endpoint; tests substitute fakes.
type SearchClient interface {
	Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error)
}

// QueryController manages the lifecycle of one query submission at a time.
// At most one request is outstanding per controller instance; submissions
// arriving while one is in flight are rejected at entry, so responses are
// always observed in submission order.
type QueryController struct {
	mu     sync.Mutex
	client SearchClient
	query  string
	state  RequestState
}

// New creates a controller in the Idle state.
func New(client SearchClient) *QueryController {
	return &QueryController{
		client: client,
		state:  RequestState{Phase: PhaseIdle},
	}
}

// UpdateQuery stores raw input text. No validation happens here; the text
// is checked at submission.
func (c *QueryController) UpdateQuery(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = text
}

// Query returns the raw input text.
func (c *QueryController) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// State returns a snapshot of the current request state.
func (c *QueryController) State() RequestState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit runs one submission to completion. It is a no-op returning false
// when the trimmed query is empty or a request is already in flight; in
// both cases no network call is issued and state is unchanged. Otherwise it
// transitions to Loading (clearing any prior error or results), issues
// exactly one request, and lands in Success or Error. Failures are captured
// into the Error state rather than returned; ctx carries the caller's
// cancellation and timeout.
func (c *QueryController) Submit(ctx context.Context) bool {
	c.mu.Lock()
	trimmed := strings.TrimSpace(c.query)
	if trimmed == "" || c.state.Phase == PhaseLoading {
		c.mu.Unlock()
		return false
	}
	c.state = RequestState{Phase: PhaseLoading}
	c.mu.Unlock()

	resp, err := c.client.Search(ctx, &types.SearchRequest{Query: trimmed})

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		message := err.Error()
		if message == "" {
			message = genericFailure
		}
		c.state = RequestState{Phase: PhaseError, Message: message}
		return true
	}

	if resp == nil {
		c.state = RequestState{Phase: PhaseError, Message: genericFailure}
		return true
	}

	c.state = RequestState{Phase: PhaseSuccess, Response: resp}
	return true
}
