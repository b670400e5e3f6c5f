// Package llm provides the internal representations of chat messages and the
// request and response bodies exchanged with the chat widget.
package llm

// ErrorResponse represents an error returned to the chat widget.
type ErrorResponse struct {
	Error string `json:"error"`
}
