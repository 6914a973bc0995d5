// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "encoding/json"

// Brain is the persona record: the structured description of the
// fictional identity whose voice and strategy drive content generation.
//
// Exactly one Brain exists per client. All nested objects are required
// to be present (possibly empty) so consumers can destructure without
// nil checks; the workspace layer repairs records that violate this.
type Brain struct {
	Identity      Identity            `json:"identity"`
	Relationships []Relationship      `json:"relationships"`
	Brand         BrandProfile        `json:"brand"`
	StyleGuide    StyleGuide          `json:"style_guide"`
	Strategy      Strategy            `json:"strategy"`
	Assets        []AssetRef          `json:"assets"`
	Locations     map[string]Location `json:"locations"`
	Candidates    []Candidate         `json:"candidates"`
}

// Identity is who the persona is. Name and Role are the required
// fields the self-healing check keys on.
type Identity struct {
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Bio        string   `json:"bio"`
	VoiceRules []string `json:"voice_rules"`
}

// Relationship is a named person in the persona's life, referenced in
// captions and story arcs.
type Relationship struct {
	Name     string `json:"name"`
	Relation string `json:"relation"`
	Notes    string `json:"notes"`
}

// BrandProfile describes the brand the persona fronts.
type BrandProfile struct {
	Description string   `json:"description"`
	Values      []string `json:"values"`
	Audience    string   `json:"audience"`
}

// StyleGuide captures the visual and verbal rules for generated content.
type StyleGuide struct {
	Tone       string   `json:"tone"`
	Palette    []string `json:"palette"`
	DoNots     []string `json:"do_nots"`
	HashtagSet []string `json:"hashtag_set"`
}

// Strategy is the content strategy sub-object. It was introduced after
// the first schema version, so stored brains may lack it entirely; the
// load-time migration list patches it in.
type Strategy struct {
	ActivePillars   []string `json:"active_pillars"`
	WinningPatterns []string `json:"winning_patterns"`
	LosingPatterns  []string `json:"losing_patterns"`
}

// AssetRef points at an uploaded reference asset (face shots, product
// photography) used to condition image generation.
type AssetRef struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	URL   string `json:"url"`
	Label string `json:"label"`
}

// Location is a recurring named place the persona posts from.
type Location struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Vibe        string `json:"vibe"`
}

// Candidate is an onboarding suggestion (a pillar or persona trait the
// operator has not accepted yet).
type Candidate struct {
	Label    string `json:"label"`
	Kind     string `json:"kind"`
	Accepted bool   `json:"accepted"`
}

// Clone returns a deep copy of the brain.
//
// The JSON round-trip is deliberate: the brain is a pure-data tree that
// already guarantees JSON fidelity, and the copy sits on UI-triggered
// paths where the cost is irrelevant.
func (b *Brain) Clone() *Brain {
	data, err := json.Marshal(b)
	if err != nil {
		// The Brain tree contains only marshalable types.
		panic("datatypes: brain marshal: " + err.Error())
	}
	out := &Brain{}
	if err := json.Unmarshal(data, out); err != nil {
		panic("datatypes: brain unmarshal: " + err.Error())
	}
	return out
}
