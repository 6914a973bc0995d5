// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package storage defines the durable key-value boundary the studio
// writes through to.
//
// The store is deliberately minimal: string keys, opaque value blobs, no
// transactions, no schema. Key-naming discipline is owned entirely by
// the workspace layer.
package storage

import "context"

// Store is the durable key-value persistence boundary.
//
// Values are opaque to the store; callers serialize/deserialize.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key. The second return is false when
	// the key is absent; absence is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases underlying resources. The store must not be used
	// after Close returns.
	Close() error
}
