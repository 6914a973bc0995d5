// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ai

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/StudioLoomAI/StudioLoom/services/studio/datatypes"
)

// Disabled is a Client for installs without an API key. Every call
// fails with a permanent error so the UI reports misconfiguration
// instead of retrying.
type Disabled struct{}

var _ Client = Disabled{}

func (Disabled) GeneratePlan(ctx context.Context, brain *datatypes.Brain, brief string, count int) ([]PlannedPost, error) {
	return nil, fmt.Errorf("%w: ai backend not configured", ErrPermanent)
}

func (Disabled) GenerateCaption(ctx context.Context, brain *datatypes.Brain, post datatypes.FeedPost) (string, error) {
	return "", fmt.Errorf("%w: ai backend not configured", ErrPermanent)
}

func (Disabled) GenerateTrends(ctx context.Context, brain *datatypes.Brain, source string) ([]datatypes.TrendCard, error) {
	return nil, fmt.Errorf("%w: ai backend not configured", ErrPermanent)
}

func (Disabled) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	return nil, fmt.Errorf("%w: ai backend not configured", ErrPermanent)
}

// Switchable is a Client whose backing implementation can be swapped
// at runtime, used for config hot reload. The zero value delegates to
// Disabled until Store is called.
//
// Thread Safety: safe for concurrent use.
type Switchable struct {
	current atomic.Pointer[Client]
}

var _ Client = (*Switchable)(nil)

// NewSwitchable returns a Switchable delegating to initial.
func NewSwitchable(initial Client) *Switchable {
	s := &Switchable{}
	s.Store(initial)
	return s
}

// Store swaps the backing client. Nil resets to Disabled.
func (s *Switchable) Store(client Client) {
	if client == nil {
		client = Disabled{}
	}
	s.current.Store(&client)
}

func (s *Switchable) load() Client {
	if p := s.current.Load(); p != nil {
		return *p
	}
	return Disabled{}
}

func (s *Switchable) GeneratePlan(ctx context.Context, brain *datatypes.Brain, brief string, count int) ([]PlannedPost, error) {
	return s.load().GeneratePlan(ctx, brain, brief, count)
}

func (s *Switchable) GenerateCaption(ctx context.Context, brain *datatypes.Brain, post datatypes.FeedPost) (string, error) {
	return s.load().GenerateCaption(ctx, brain, post)
}

func (s *Switchable) GenerateTrends(ctx context.Context, brain *datatypes.Brain, source string) ([]datatypes.TrendCard, error) {
	return s.load().GenerateTrends(ctx, brain, source)
}

func (s *Switchable) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	return s.load().GenerateImage(ctx, prompt)
}
