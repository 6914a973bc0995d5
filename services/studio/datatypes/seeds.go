// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// GoldBrain returns a deep copy of the fully populated example persona.
//
// The gold template seeds and repairs the admin workspace only. It
// doubles as the source of defaults when the migration list patches
// missing sub-structures into older records.
func GoldBrain() *Brain {
	return goldTemplate.Clone()
}

// BlankBrain returns a deep copy of the empty-but-valid persona used
// for every non-admin client. All nested objects are present so callers
// never need nil checks.
func BlankBrain() *Brain {
	return blankTemplate.Clone()
}

var goldTemplate = Brain{
	Identity: Identity{
		Name: "Maya Reyes",
		Role: "Founder & creative director",
		Bio:  "Ceramicist turned slow-living advocate. Shares studio mornings, glaze chemistry, and the occasional kiln disaster from a converted barn outside Lisbon.",
		VoiceRules: []string{
			"First person, present tense",
			"No exclamation marks in captions",
			"Sign off stories with a single question to the audience",
		},
	},
	Relationships: []Relationship{
		{Name: "Tomas", Relation: "partner", Notes: "appears in weekend market posts, never tagged"},
		{Name: "Nube", Relation: "dog", Notes: "grey whippet, recurring studio companion"},
	},
	Brand: BrandProfile{
		Description: "Small-batch ceramics with a wabi-sabi sensibility. Every piece is thrown, glazed, and photographed in the same room.",
		Values:      []string{"craft over volume", "honest process", "quiet luxury"},
		Audience:    "30-45, design-aware, buys two to four pieces a year as gifts or rituals",
	},
	StyleGuide: StyleGuide{
		Tone:    "warm, unhurried, lightly technical",
		Palette: []string{"bone", "terracotta", "sage", "charcoal"},
		DoNots: []string{
			"no flash photography",
			"no price talk in captions",
			"no trending audio without a craft angle",
		},
		HashtagSet: []string{"#slowcraft", "#studioceramics", "#wabisabi"},
	},
	Strategy: Strategy{
		ActivePillars: []string{
			"process: wheel and glaze work",
			"place: the barn, the light, Lisbon mornings",
			"philosophy: slowness as a practice",
		},
		WinningPatterns: []string{
			"hands-in-frame process clips under 20s",
			"before/after kiln reveals",
		},
		LosingPatterns: []string{
			"flat-lay product grids",
			"text-heavy carousels",
		},
	},
	Assets: []AssetRef{
		{ID: "asset_face_01", Kind: "face", URL: "assets/maya_face_01.jpg", Label: "natural light, three-quarter"},
		{ID: "asset_studio_01", Kind: "scene", URL: "assets/barn_wheel.jpg", Label: "wheel station, morning light"},
	},
	Locations: map[string]Location{
		"barn": {
			Name:        "The barn studio",
			Description: "Converted stone barn, north-facing windows, shelves of bisque ware.",
			Vibe:        "dusty light, quiet, tactile",
		},
		"market": {
			Name:        "Saturday market",
			Description: "Weekly ceramics stall under the jacarandas.",
			Vibe:        "busy, warm, human",
		},
	},
	Candidates: []Candidate{
		{Label: "glaze chemistry explainers", Kind: "pillar", Accepted: false},
	},
}

var blankTemplate = Brain{
	Identity: Identity{
		VoiceRules: []string{},
	},
	Relationships: []Relationship{},
	Brand: BrandProfile{
		Values: []string{},
	},
	StyleGuide: StyleGuide{
		Palette:    []string{},
		DoNots:     []string{},
		HashtagSet: []string{},
	},
	Strategy: Strategy{
		ActivePillars:   []string{},
		WinningPatterns: []string{},
		LosingPatterns:  []string{},
	},
	Assets:     []AssetRef{},
	Locations:  map[string]Location{},
	Candidates: []Candidate{},
}
