// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes holds the studio's persisted data model: the client
// registry, the persona record ("brain"), feed posts, and the lighter
// content collections (bank, highlights, stories, playbook).
//
// Everything here is plain data serialized as JSON into the durable
// store. Behavior lives in the workspace package.
package datatypes

// AdminClientID is the distinguished, permanent workspace tenant.
// It cannot be deleted and is the fallback active client.
const AdminClientID = "admin"

// ClientMeta is one entry in the client registry.
type ClientMeta struct {
	// ID uniquely identifies the client namespace.
	ID string `json:"id"`

	// Name is the display name shown in the workspace switcher.
	Name string `json:"name"`

	// Configured is false until the operator finishes persona setup.
	Configured bool `json:"configured"`
}

// AppSettings are global, client-independent preferences.
type AppSettings struct {
	// GridColumns is the feed grid width. Instagram-style default is 3.
	GridColumns int `json:"grid_columns"`

	// Autosave toggles write-through on every edit.
	Autosave bool `json:"autosave"`

	// Model is the AI model name used for generation calls.
	Model string `json:"model"`
}

// DefaultSettings returns the fixed preset used when no settings record
// exists yet.
func DefaultSettings() AppSettings {
	return AppSettings{
		GridColumns: 3,
		Autosave:    true,
		Model:       "gpt-4o-mini",
	}
}
