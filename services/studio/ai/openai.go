// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/StudioLoomAI/StudioLoom/services/studio/datatypes"
)

// OpenAIConfig configures the OpenAI-backed client.
type OpenAIConfig struct {
	// APIKey is the OpenAI API key. Falls back to OPENAI_API_KEY.
	APIKey string

	// BaseURL overrides the API endpoint, for OpenAI-compatible local
	// servers. Empty means the official endpoint.
	BaseURL string

	// Model is the chat model for plans, captions and trends.
	Model string

	// ImageModel is the image generation model.
	ImageModel string

	// Retry controls backoff for transient failures.
	Retry RetryConfig
}

// DefaultOpenAIConfig returns config suitable for the hosted API.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		APIKey:     os.Getenv("OPENAI_API_KEY"),
		Model:      openai.GPT4oMini,
		ImageModel: openai.CreateImageModelDallE3,
		Retry:      DefaultRetryConfig(),
	}
}

// Validate checks that required fields are set.
func (c *OpenAIConfig) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api key is required (set OPENAI_API_KEY)")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	return nil
}

// OpenAIClient implements Client against the OpenAI API (or any
// compatible endpoint via BaseURL).
type OpenAIClient struct {
	api    *openai.Client
	cfg    OpenAIConfig
	logger *slog.Logger
}

var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient creates a client from config.
func NewOpenAIClient(cfg OpenAIConfig, logger *slog.Logger) (*OpenAIClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ai config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{
		api:    openai.NewClientWithConfig(apiCfg),
		cfg:    cfg,
		logger: logger.With("component", "ai"),
	}, nil
}

// GeneratePlan proposes feed posts for the persona from a sprint brief.
func (c *OpenAIClient) GeneratePlan(ctx context.Context, brain *datatypes.Brain, brief string, count int) ([]PlannedPost, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: post count must be positive", ErrPermanent)
	}

	system := personaPrompt(brain) + `
You are planning a content sprint. Respond with a JSON array of post
objects, each with "caption", "prompt" (an image generation prompt),
"date" (YYYY-MM-DD, optional) and "pillar" (one of the active content
pillars). Respond with JSON only.`
	user := fmt.Sprintf("Plan %d posts for this sprint brief:\n\n%s", count, brief)

	raw, err := c.chat(ctx, system, user)
	if err != nil {
		return nil, err
	}

	var posts []PlannedPost
	if err := decodeJSON(raw, &posts); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPermanent, err)
	}
	if len(posts) > count {
		posts = posts[:count]
	}
	c.logger.Debug("plan generated", "requested", count, "returned", len(posts))
	return posts, nil
}

// GenerateCaption writes a caption for one post in the persona's voice.
func (c *OpenAIClient) GenerateCaption(ctx context.Context, brain *datatypes.Brain, post datatypes.FeedPost) (string, error) {
	system := personaPrompt(brain) + `
Write a single social media caption in the persona's voice. Respond
with the caption text only, no quotes, no preamble.`

	var sb strings.Builder
	sb.WriteString("Write a caption for this post.\n")
	if post.Prompt != "" {
		fmt.Fprintf(&sb, "Image prompt: %s\n", post.Prompt)
	}
	if post.Notes != "" {
		fmt.Fprintf(&sb, "Notes from the operator: %s\n", post.Notes)
	}
	if post.Caption != "" {
		fmt.Fprintf(&sb, "Current caption to improve: %s\n", post.Caption)
	}

	raw, err := c.chat(ctx, system, sb.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// GenerateTrends turns pasted source material into playbook cards.
func (c *OpenAIClient) GenerateTrends(ctx context.Context, brain *datatypes.Brain, source string) ([]datatypes.TrendCard, error) {
	system := personaPrompt(brain) + `
Extract trends from the source material and adapt them to this persona.
Respond with a JSON array of objects with "title", "origin" (where the
trend comes from), "vibe" (the mood or aesthetic) and "strategy" (how
this persona should use it). Respond with JSON only.`

	raw, err := c.chat(ctx, system, source)
	if err != nil {
		return nil, err
	}

	var cards []datatypes.TrendCard
	if err := decodeJSON(raw, &cards); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPermanent, err)
	}
	for i := range cards {
		if cards[i].ID == "" {
			cards[i].ID = uuid.New().String()
		}
	}
	return cards, nil
}

// GenerateImage renders a PNG for the prompt.
func (c *OpenAIClient) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: image prompt is empty", ErrPermanent)
	}

	var resp openai.ImageResponse
	err := retry(ctx, c.cfg.Retry, func(ctx context.Context) error {
		var callErr error
		resp, callErr = c.api.CreateImage(ctx, openai.ImageRequest{
			Model:          c.cfg.ImageModel,
			Prompt:         prompt,
			N:              1,
			Size:           openai.CreateImageSize1024x1024,
			ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		})
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("image generation: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: image response has no data", ErrPermanent)
	}

	img, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("%w: decode image payload: %w", ErrPermanent, err)
	}
	return img, nil
}

// chat runs one system+user completion with retry and returns the raw
// assistant text.
func (c *OpenAIClient) chat(ctx context.Context, system, user string) (string, error) {
	var resp openai.ChatCompletionResponse
	err := retry(ctx, c.cfg.Retry, func(ctx context.Context) error {
		var callErr error
		resp, callErr = c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.cfg.Model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
		})
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion has no choices", ErrPermanent)
	}
	return resp.Choices[0].Message.Content, nil
}

// personaPrompt renders the persona brain into a system prompt prefix.
func personaPrompt(brain *datatypes.Brain) string {
	if brain == nil {
		return "You are a social media content strategist."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are the content strategist for %s, %s.\n",
		orUnnamed(brain.Identity.Name), orUnknown(brain.Identity.Role))
	if brain.Identity.Bio != "" {
		fmt.Fprintf(&sb, "Bio: %s\n", brain.Identity.Bio)
	}
	if len(brain.Identity.VoiceRules) > 0 {
		fmt.Fprintf(&sb, "Voice rules: %s\n", strings.Join(brain.Identity.VoiceRules, "; "))
	}
	if len(brain.Strategy.ActivePillars) > 0 {
		fmt.Fprintf(&sb, "Active content pillars: %s\n", strings.Join(brain.Strategy.ActivePillars, "; "))
	}
	if len(brain.Strategy.WinningPatterns) > 0 {
		fmt.Fprintf(&sb, "Patterns that perform well: %s\n", strings.Join(brain.Strategy.WinningPatterns, "; "))
	}
	if len(brain.Strategy.LosingPatterns) > 0 {
		fmt.Fprintf(&sb, "Patterns to avoid: %s\n", strings.Join(brain.Strategy.LosingPatterns, "; "))
	}
	return sb.String()
}

func orUnnamed(s string) string {
	if s == "" {
		return "an unnamed persona"
	}
	return s
}

func orUnknown(s string) string {
	if s == "" {
		return "a content creator"
	}
	return s
}
