// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ai

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		BackoffFactor:  2.0,
	}
}

func apiError(status int) error {
	return &openai.APIError{HTTPStatusCode: status, Message: "upstream"}
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	assert.ErrorIs(t, classify(apiError(http.StatusTooManyRequests)), ErrTransient)
	assert.ErrorIs(t, classify(apiError(http.StatusBadGateway)), ErrTransient)
	assert.ErrorIs(t, classify(context.DeadlineExceeded), ErrTransient)

	assert.ErrorIs(t, classify(apiError(http.StatusBadRequest)), ErrPermanent)
	assert.ErrorIs(t, classify(apiError(http.StatusUnauthorized)), ErrPermanent)
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := retry(context.Background(), fastRetryConfig(3), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return apiError(http.StatusServiceUnavailable)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := retry(context.Background(), fastRetryConfig(5), func(ctx context.Context) error {
		calls++
		return apiError(http.StatusBadRequest)
	})

	assert.ErrorIs(t, err, ErrPermanent)
	assert.Equal(t, 1, calls, "permanent errors must not be retried")
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := retry(context.Background(), fastRetryConfig(3), func(ctx context.Context) error {
		calls++
		return apiError(http.StatusInternalServerError)
	})

	assert.ErrorIs(t, err, ErrTransient)
	assert.Equal(t, 3, calls)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry(ctx, fastRetryConfig(10), func(ctx context.Context) error {
		calls++
		cancel()
		return apiError(http.StatusServiceUnavailable)
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetryPreservesUnderlyingError(t *testing.T) {
	underlying := errors.New("socket closed")
	err := retry(context.Background(), fastRetryConfig(2), func(ctx context.Context) error {
		return underlying
	})

	assert.ErrorIs(t, err, underlying)
	assert.ErrorIs(t, err, ErrTransient)
}

func TestNextBackoffCapsAtMax(t *testing.T) {
	b := 8 * time.Millisecond
	b = nextBackoff(b, 2.0, 10*time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, b)
	b = nextBackoff(b, 2.0, 10*time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, b)
}
