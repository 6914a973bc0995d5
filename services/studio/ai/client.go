// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ai is the boundary to the external generative-AI service.
//
// The workspace data layer has no dependency on this package; only the
// HTTP glue layer calls it. Callers get structured results or an error
// classified as transient (retried here with capped exponential
// backoff) or permanent (surfaced immediately).
package ai

import (
	"context"

	"github.com/StudioLoomAI/StudioLoom/services/studio/datatypes"
)

// PlannedPost is one AI-proposed feed entry.
type PlannedPost struct {
	Caption string `json:"caption"`
	Prompt  string `json:"prompt"`
	Date    string `json:"date,omitempty"`
	Pillar  string `json:"pillar,omitempty"`
}

// Client defines the generative-AI backend interface.
type Client interface {
	// GeneratePlan proposes feed posts for the persona from a sprint
	// brief.
	GeneratePlan(ctx context.Context, brain *datatypes.Brain, brief string, count int) ([]PlannedPost, error)

	// GenerateCaption writes a caption for one post in the persona's
	// voice.
	GenerateCaption(ctx context.Context, brain *datatypes.Brain, post datatypes.FeedPost) (string, error)

	// GenerateTrends turns source material (a pasted trend roundup,
	// a competitor note) into playbook cards for the persona.
	GenerateTrends(ctx context.Context, brain *datatypes.Brain, source string) ([]datatypes.TrendCard, error)

	// GenerateImage renders an image for the prompt, returned as raw
	// bytes (PNG).
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}
