package llm

// ChatRequest is a single submission from the chat widget.
type ChatRequest struct {
	Query string `json:"query"` // The text the user just submitted

	// History is the transcript as the widget sees it. It is accepted so the
	// widget can post its own state, but it is never consulted: the
	// conversation client keeps the authoritative history.
	History []Message `json:"history,omitempty"`
}
