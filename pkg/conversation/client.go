// Package conversation holds a single chat session with an Azure OpenAI
// deployment: the linear message history and the calls that extend it.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/papercomputeco/azurechat/pkg/config"
	"github.com/papercomputeco/azurechat/pkg/llm"
)

const (
	// Temperature is the sampling temperature sent with every request.
	Temperature float32 = 0.7

	// MaxOutputTokens caps the length of each reply.
	MaxOutputTokens = 400
)

// Client is one conversation with the completion provider. The history always
// starts with a single system message, followed by strictly alternating user
// and assistant messages, one pair per successful Generate.
//
// A Client is not safe for concurrent use. Hosts must serialize Generate
// calls, and each session needs its own Client.
type Client struct {
	api        *openai.Client
	deployment string
	logger     *zap.Logger
	messages   []llm.Message
}

// New validates the Azure parameters and creates a Client whose history holds
// only the persona system message. An empty persona selects DefaultPersona.
// Missing parameters yield a *config.ConfigurationError and no client is built.
func New(azure config.Azure, persona string, logger *zap.Logger) (*Client, error) {
	if err := azure.Validate(); err != nil {
		return nil, err
	}

	if persona == "" {
		persona = DefaultPersona
	}

	apiConfig := openai.DefaultAzureConfig(azure.APIKey, strings.TrimRight(azure.Endpoint, "/"))
	apiConfig.APIVersion = azure.APIVersion

	// Requests are always routed to the configured deployment, whatever
	// model name go-openai is handed.
	deployment := azure.Deployment
	apiConfig.AzureModelMapperFunc = func(string) string {
		return deployment
	}

	return &Client{
		api:        openai.NewClientWithConfig(apiConfig),
		deployment: deployment,
		logger:     logger,
		messages: []llm.Message{
			{Role: llm.RoleSystem, Content: persona},
		},
	}, nil
}

// Generate appends userQuery to the history, asks the deployment for a
// completion over the whole history, appends the reply and returns it.
//
// Exactly one request is made; there is no retry. On failure a *ProviderError
// is returned and the user message is removed again, leaving the history
// exactly as it was before the call.
func (c *Client) Generate(ctx context.Context, userQuery string) (string, error) {
	startTime := time.Now()

	c.messages = append(c.messages, llm.Message{Role: llm.RoleUser, Content: userQuery})

	c.logger.Debug("sending completion request",
		zap.String("deployment", c.deployment),
		zap.Int("message_count", len(c.messages)),
		zap.String("query_preview", truncate(userQuery, 100)),
	)

	reply, err := c.complete(ctx)
	if err != nil {
		c.messages = c.messages[:len(c.messages)-1]
		c.logger.Warn("completion failed",
			zap.String("deployment", c.deployment),
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(err),
		)
		return "", err
	}

	c.messages = append(c.messages, llm.Message{Role: llm.RoleAssistant, Content: reply})

	c.logger.Debug("received completion",
		zap.String("reply_preview", truncate(reply, 100)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return reply, nil
}

// complete performs the round trip for the current history.
func (c *Client) complete(ctx context.Context) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.deployment,
		Temperature: Temperature,
		MaxTokens:   MaxOutputTokens,
		Messages:    toOpenAI(c.messages),
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", newProviderError(err)
	}

	if len(resp.Choices) == 0 {
		return "", newProviderError(ErrEmptyCompletion)
	}

	choice := resp.Choices[0]

	c.logger.Info("completion done",
		zap.String("deployment", c.deployment),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.String("finish_reason", string(choice.FinishReason)),
	)

	// Azure answers a filtered prompt with 200 and no content
	if choice.Message.Content == "" {
		pe := newProviderError(fmt.Errorf("%w: finish reason %q", ErrEmptyCompletion, choice.FinishReason))
		pe.Code = string(choice.FinishReason)
		return "", pe
	}

	return choice.Message.Content, nil
}

// Messages returns a copy of the conversation history, oldest first.
func (c *Client) Messages() []llm.Message {
	out := make([]llm.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func toOpenAI(msgs []llm.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return out
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
