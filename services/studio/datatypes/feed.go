// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// Post status values.
const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusPosted    = "posted"
)

// Post content types.
const (
	TypeEmpty = "empty"
	TypeImage = "image"
	TypeVideo = "video"
)

// Feedback tags.
const (
	FeedbackWinner = "winner"
	FeedbackFlop   = "flop"
)

// FeedPost is one slot in the visual feed grid.
//
// Slots are never removed from the ordered sequence; clearing a post
// resets it to TypeEmpty so grid positions stay stable. Invariant: a
// TypeEmpty post has no image, video, or caption.
type FeedPost struct {
	ID       string `json:"id"`
	Image    string `json:"image,omitempty"`
	Video    string `json:"video,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Date     string `json:"date,omitempty"`
	Status   string `json:"status" binding:"omitempty,oneof=draft scheduled posted"`
	Type     string `json:"type" binding:"omitempty,oneof=empty image video"`
	Notes    string `json:"notes,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
	Feedback string `json:"feedback,omitempty" binding:"omitempty,oneof=winner flop"`
}

// EmptyPost returns a placeholder slot with the given id.
func EmptyPost(id string) FeedPost {
	return FeedPost{
		ID:     id,
		Status: StatusDraft,
		Type:   TypeEmpty,
	}
}

// Clear resets the post to an empty placeholder, preserving its id and
// grid position.
func (p *FeedPost) Clear() {
	*p = EmptyPost(p.ID)
}

// Valid reports whether the post satisfies the empty-slot invariant.
func (p *FeedPost) Valid() bool {
	if p.Type != TypeEmpty {
		return true
	}
	return p.Image == "" && p.Video == "" && p.Caption == ""
}

// BankItem is an unplaced image in the holding pen.
type BankItem struct {
	ID    string `json:"id"`
	Image string `json:"image"`
}

// Highlight is a user-named highlight reel slot.
type Highlight struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Cover string `json:"cover,omitempty"`
}

// StoryItem is one story frame with an optional overlay caption.
type StoryItem struct {
	ID      string `json:"id"`
	Image   string `json:"image"`
	Overlay string `json:"overlay,omitempty"`
}

// TrendCard is a playbook entry. Cards are immutable once generated;
// the playbook only adds and removes them.
type TrendCard struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Origin   string `json:"origin"`
	Vibe     string `json:"vibe"`
	Strategy string `json:"strategy"`
}

// PostTemplate is a reusable caption/prompt scaffold.
type PostTemplate struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

// Draft is free-form scratch text for the operator.
type Draft struct {
	Text string `json:"text"`
}

// Sprint is the current planning sprint: a brief plus the number of
// posts to plan.
type Sprint struct {
	Brief     string `json:"brief"`
	PostCount int    `json:"post_count"`
	StartDate string `json:"start_date,omitempty"`
}
