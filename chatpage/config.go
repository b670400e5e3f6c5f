package chatpage

// Config is the chat page server configuration.
type Config struct {
	// Address to listen on (e.g., ":32123")
	ListenAddr string
}
