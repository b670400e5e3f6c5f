package llm

// ChatResponse is the reply shown by the chat widget for one submission.
type ChatResponse struct {
	Reply string `json:"reply"`          // Raw reply text
	HTML  string `json:"html,omitempty"` // Sanitized HTML rendering of Reply
}
