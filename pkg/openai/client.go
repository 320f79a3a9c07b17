package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/johnquangdev/meeting-agent/pkg/config"
)

// Client wraps the go-openai SDK for chat completions against OpenAI compatible APIs
type Client struct {
	api *goopenai.Client
}

// NewClient creates a client using values from the provided config
func NewClient(cfg *config.OpenAIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	sdkCfg := goopenai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(cfg.BaseURL, "/"); base != "" {
		sdkCfg.BaseURL = base
	}
	sdkCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{api: goopenai.NewClientWithConfig(sdkCfg)}
}

// Message is a single chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// StatusError is returned when the API answers with a non 2xx status
type StatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openai returned status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Complete sends the request and returns the first choice's content
func (c *Client) Complete(ctx context.Context, chat ChatRequest) (string, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(chat.Messages))
	for _, m := range chat.Messages {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       chat.Model,
		Messages:    messages,
		Temperature: float32(chat.Temperature),
		MaxTokens:   chat.MaxTokens,
	})
	if err != nil {
		return "", statusError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from openai")
	}
	return resp.Choices[0].Message.Content, nil
}

// statusError maps SDK errors that carry an HTTP status onto StatusError
func statusError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &StatusError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message, Err: err}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return &StatusError{StatusCode: reqErr.HTTPStatusCode, Body: string(reqErr.Body), Err: err}
	}
	return err
}
