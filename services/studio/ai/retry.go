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
	"math/rand"
	"net"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrPermanent wraps client errors (bad request, bad key) that must not
// be retried.
var ErrPermanent = errors.New("permanent ai error")

// ErrTransient wraps rate-limit and availability errors the caller may
// retry.
var ErrTransient = errors.New("transient ai error")

// RetryConfig configures retry behavior with exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	MaxAttempts int

	// InitialBackoff is the wait before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the wait between retries.
	MaxBackoff time.Duration

	// BackoffFactor is the exponential multiplier.
	BackoffFactor float64

	// JitterFactor is the maximum jitter as a fraction of backoff (0-1).
	JitterFactor float64
}

// DefaultRetryConfig returns the studio's defaults: 3 attempts, 1s
// initial backoff doubling to a 15s cap, 20% jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Second,
		MaxBackoff:     15 * time.Second,
		BackoffFactor:  2.0,
		JitterFactor:   0.2,
	}
}

// classify maps an upstream error onto the transient/permanent split.
//
// Rate limits, 5xx responses, and network timeouts are transient.
// Everything else from the API (4xx: bad request, bad key, content
// policy) is permanent and must not be retried.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return errors.Join(ErrTransient, err)
		case apiErr.HTTPStatusCode >= 500:
			return errors.Join(ErrTransient, err)
		default:
			return errors.Join(ErrPermanent, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Join(ErrTransient, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrTransient, err)
	}

	// Connection refused, DNS failures and the like: the local network
	// hiccuped, worth retrying.
	return errors.Join(ErrTransient, err)
}

// retry executes fn with capped exponential backoff, retrying only
// errors classified as transient. The returned error is already
// classified, so callers can errors.Is against ErrTransient or
// ErrPermanent.
func retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	backoff := cfg.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = classify(err)

		if errors.Is(lastErr, ErrPermanent) {
			return lastErr
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		wait := withJitter(backoff, cfg.JitterFactor)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		backoff = nextBackoff(backoff, cfg.BackoffFactor, cfg.MaxBackoff)
	}
	return lastErr
}

// withJitter spreads the backoff over [base*(1-j), base*(1+j)].
func withJitter(base time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return base
	}
	jitter := (rand.Float64()*2 - 1) * jitterFactor
	return time.Duration(float64(base) * (1.0 + jitter))
}

func nextBackoff(current time.Duration, factor float64, max time.Duration) time.Duration {
	next := time.Duration(float64(current) * factor)
	if next > max {
		return max
	}
	return next
}
