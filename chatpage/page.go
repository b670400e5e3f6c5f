// Package chatpage serves the browser chat widget and binds its submissions
// to a single conversation.
package chatpage

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html"
	"html/template"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/azurechat/pkg/llm"
	"github.com/papercomputeco/azurechat/pkg/markdown"
)

const (
	// Route is where the chat page is served.
	Route = "/chat"

	// RespondRoute receives widget submissions.
	RespondRoute = Route + "/respond"

	// Title is the page title and heading of every chat host.
	Title = "Azure AI Chat"

	// BotUser is the name shown on assistant replies.
	BotUser = "Azure AI"

	// FailureReply is displayed in place of a reply when the completion
	// provider fails. The session stays usable.
	FailureReply = "Sorry, something went wrong while talking to Azure AI. Please try again."
)

//go:embed templates/chat.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/chat.html"))

// Generator produces the assistant's reply to one user query. It is
// implemented by *conversation.Client.
type Generator interface {
	Generate(ctx context.Context, userQuery string) (string, error)
}

// Page is the chat web app. It holds one Generator for its whole lifetime
// and forwards every widget submission to it, one at a time.
type Page struct {
	config   Config
	client   Generator
	renderer *markdown.Renderer
	logger   *zap.Logger
	server   *fiber.App

	// mu serializes Respond so only one generation is in flight.
	mu sync.Mutex
}

// New creates a Page that answers with client.
func New(config Config, client Generator, logger *zap.Logger) (*Page, error) {
	if client == nil {
		return nil, fmt.Errorf("chat page requires a conversation client")
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	p := &Page{
		config:   config,
		client:   client,
		renderer: markdown.NewRenderer(),
		logger:   logger,
		server:   app,
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(Route)
	})
	app.Get(Route, p.handlePage)
	app.Post(RespondRoute, p.handleRespond)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	return p, nil
}

// Run starts the server on the configured listening address.
func (p *Page) Run() error {
	p.logger.Info("starting chat page",
		zap.String("listen", p.config.ListenAddr),
		zap.String("route", Route),
	)

	return p.server.Listen(p.config.ListenAddr)
}

// Shutdown stops the server, waiting for in-flight requests until ctx is done.
func (p *Page) Shutdown(ctx context.Context) error {
	return p.server.ShutdownWithContext(ctx)
}

// Respond is the widget callback: it returns the text to display for
// userQuery. uiHistory is the widget's own copy of the transcript; it is
// accepted for compatibility with the widget's submission shape and is not
// used, since the Generator keeps the authoritative history.
//
// Provider failures are logged and answered with FailureReply.
func (p *Page) Respond(ctx context.Context, userQuery string, uiHistory []llm.Message) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	reply, err := p.client.Generate(ctx, userQuery)
	if err != nil {
		p.logger.Error("failed to generate reply", zap.Error(err))
		return FailureReply
	}

	return reply
}

type pageData struct {
	Title       string
	BotUser     string
	RespondPath string
}

// handlePage renders the chat widget.
func (p *Page) handlePage(c *fiber.Ctx) error {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		Title:       Title,
		BotUser:     BotUser,
		RespondPath: RespondRoute,
	})
	if err != nil {
		p.logger.Error("failed to render chat page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("internal error")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

// handleRespond answers one widget submission.
func (p *Page) handleRespond(c *fiber.Ctx) error {
	startTime := time.Now()
	requestID := uuid.NewString()

	var req llm.ChatRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		p.logger.Error("failed to parse request", zap.String("request_id", requestID), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	p.logger.Debug("received chat submission",
		zap.String("request_id", requestID),
		zap.Int("query_length", len(req.Query)),
		zap.Int("ui_history_length", len(req.History)),
	)

	// The fasthttp context is only cancelled on server shutdown, not when the
	// browser goes away, so an abandoned submission still holds the lock until
	// Azure answers. Accepted: there is one session and no timeout.
	reply := p.Respond(c.Context(), req.Query, req.History)

	rendered, err := p.renderer.Render(reply)
	if err != nil {
		p.logger.Warn("failed to render reply", zap.String("request_id", requestID), zap.Error(err))
		rendered = "<p>" + html.EscapeString(reply) + "</p>"
	}

	p.logger.Info("answered chat submission",
		zap.String("request_id", requestID),
		zap.Duration("duration", time.Since(startTime)),
	)

	return c.JSON(llm.ChatResponse{Reply: reply, HTML: rendered})
}
