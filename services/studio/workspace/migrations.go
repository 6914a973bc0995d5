// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package workspace

import "github.com/StudioLoomAI/StudioLoom/services/studio/datatypes"

// migration is one load-time persona repair step. Each step states its
// precondition (applies) and its transform (apply), with defaults drawn
// from a template brain (gold for the admin workspace, blank for
// clients).
//
// Steps run in order on every load and every step is idempotent, so
// running the list twice yields the same record as running it once.
// There is no migration flag in the stored data.
type migration struct {
	name    string
	applies func(b *datatypes.Brain) bool
	apply   func(b *datatypes.Brain, defaults *datatypes.Brain)
}

// brainMigrations is the ordered repair list. New schema additions get
// appended here instead of scattering presence checks across loads.
var brainMigrations = []migration{
	{
		// Strategy predates nothing; records written before it
		// existed lack the whole sub-object.
		name: "seed_strategy",
		applies: func(b *datatypes.Brain) bool {
			return b.Strategy.ActivePillars == nil &&
				b.Strategy.WinningPatterns == nil &&
				b.Strategy.LosingPatterns == nil
		},
		apply: func(b *datatypes.Brain, defaults *datatypes.Brain) {
			b.Strategy = defaults.Clone().Strategy
		},
	},
	{
		name: "fill_empty_pillars",
		applies: func(b *datatypes.Brain) bool {
			return len(b.Strategy.ActivePillars) == 0
		},
		apply: func(b *datatypes.Brain, defaults *datatypes.Brain) {
			b.Strategy.ActivePillars = append([]string{}, defaults.Strategy.ActivePillars...)
		},
	},
	{
		name: "seed_locations",
		applies: func(b *datatypes.Brain) bool {
			return b.Locations == nil
		},
		apply: func(b *datatypes.Brain, defaults *datatypes.Brain) {
			b.Locations = defaults.Clone().Locations
		},
	},
	{
		name: "nil_collections",
		applies: func(b *datatypes.Brain) bool {
			return b.Relationships == nil || b.Assets == nil ||
				b.Candidates == nil || b.Identity.VoiceRules == nil ||
				b.Brand.Values == nil || b.StyleGuide.Palette == nil ||
				b.StyleGuide.DoNots == nil || b.StyleGuide.HashtagSet == nil ||
				b.Strategy.WinningPatterns == nil || b.Strategy.LosingPatterns == nil
		},
		apply: func(b *datatypes.Brain, _ *datatypes.Brain) {
			if b.Relationships == nil {
				b.Relationships = []datatypes.Relationship{}
			}
			if b.Assets == nil {
				b.Assets = []datatypes.AssetRef{}
			}
			if b.Candidates == nil {
				b.Candidates = []datatypes.Candidate{}
			}
			if b.Identity.VoiceRules == nil {
				b.Identity.VoiceRules = []string{}
			}
			if b.Brand.Values == nil {
				b.Brand.Values = []string{}
			}
			if b.StyleGuide.Palette == nil {
				b.StyleGuide.Palette = []string{}
			}
			if b.StyleGuide.DoNots == nil {
				b.StyleGuide.DoNots = []string{}
			}
			if b.StyleGuide.HashtagSet == nil {
				b.StyleGuide.HashtagSet = []string{}
			}
			if b.Strategy.WinningPatterns == nil {
				b.Strategy.WinningPatterns = []string{}
			}
			if b.Strategy.LosingPatterns == nil {
				b.Strategy.LosingPatterns = []string{}
			}
		},
	},
}

// needsReseed reports whether the record is beyond patching and must be
// replaced wholesale: required identity fields are the minimum for any
// generation call to make sense.
func needsReseed(b *datatypes.Brain) bool {
	return b == nil || b.Identity.Name == "" || b.Identity.Role == ""
}

// repairBrain runs the migration list against b, drawing defaults from
// the given template. Returns the applied step names (empty when the
// record was already current).
func repairBrain(b *datatypes.Brain, defaults *datatypes.Brain) []string {
	var applied []string
	for _, m := range brainMigrations {
		if m.applies(b) {
			m.apply(b, defaults)
			applied = append(applied, m.name)
		}
	}
	return applied
}
