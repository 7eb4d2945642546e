// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

// Package llm adapts an OpenAI-compatible chat model to the analysis.Completer
// interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tomtom215/quotebook/internal/logging"
)

// ErrEmptyResponse is returned when the model answers with no content.
var ErrEmptyResponse = errors.New("llm: empty response")

// Config configures the chat model.
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxRetries int
	BaseDelay  time.Duration
}

// Client sends single user-role prompts to a chat model.
type Client struct {
	chatModel  model.ChatModel
	maxRetries int
	baseDelay  time.Duration
}

// New creates a Client backed by an OpenAI-compatible endpoint.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm: api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm: model is required")
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: init chat model: %w", err)
	}

	return NewWithModel(chatModel, cfg.MaxRetries, cfg.BaseDelay), nil
}

// NewWithModel wraps an existing chat model.
func NewWithModel(chatModel model.ChatModel, maxRetries int, baseDelay time.Duration) *Client {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 2 * time.Second
	}
	return &Client{chatModel: chatModel, maxRetries: maxRetries, baseDelay: baseDelay}
}

// Complete sends prompt as the only user message and returns the model text.
// Rate-limit responses (429) are retried with exponential backoff while ctx allows.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	messages := []*schema.Message{
		{Role: schema.User, Content: prompt},
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		resp, err := c.chatModel.Generate(ctx, messages)
		if err == nil {
			if resp == nil || strings.TrimSpace(resp.Content) == "" {
				return "", ErrEmptyResponse
			}
			return resp.Content, nil
		}

		lastErr = err
		if !isRateLimited(err) || attempt == c.maxRetries {
			break
		}

		delay := c.baseDelay * time.Duration(1<<attempt)
		logging.Ctx(ctx).Warn().Str("component", "llm").Int("attempt", attempt+1).Dur("backoff", delay).
			Msg("Rate limited by AI provider, retrying")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	return "", fmt.Errorf("llm: generate: %w", lastErr)
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}
