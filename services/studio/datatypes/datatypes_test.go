// Copyright (C) 2025 StudioLoom (dev@studioloom.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneIsDeep(t *testing.T) {
	original := GoldBrain()
	clone := original.Clone()

	require.Equal(t, original, clone)

	clone.Identity.Name = "someone else"
	clone.Strategy.ActivePillars[0] = "mutated"
	clone.Locations["barn"] = Location{Name: "mutated"}

	assert.Equal(t, "Maya Reyes", original.Identity.Name)
	assert.Equal(t, "process: wheel and glaze work", original.Strategy.ActivePillars[0])
	assert.Equal(t, "The barn studio", original.Locations["barn"].Name)
}

func TestSeedTemplatesAreStructurallyComplete(t *testing.T) {
	for name, brain := range map[string]*Brain{
		"gold":  GoldBrain(),
		"blank": BlankBrain(),
	} {
		t.Run(name, func(t *testing.T) {
			require.NotNil(t, brain.Relationships)
			require.NotNil(t, brain.Brand.Values)
			require.NotNil(t, brain.StyleGuide.Palette)
			require.NotNil(t, brain.StyleGuide.DoNots)
			require.NotNil(t, brain.StyleGuide.HashtagSet)
			require.NotNil(t, brain.Strategy.ActivePillars)
			require.NotNil(t, brain.Strategy.WinningPatterns)
			require.NotNil(t, brain.Strategy.LosingPatterns)
			require.NotNil(t, brain.Assets)
			require.NotNil(t, brain.Locations)
			require.NotNil(t, brain.Candidates)
			require.NotNil(t, brain.Identity.VoiceRules)
		})
	}
}

func TestGoldTemplateHasRequiredIdentity(t *testing.T) {
	brain := GoldBrain()
	assert.NotEmpty(t, brain.Identity.Name)
	assert.NotEmpty(t, brain.Identity.Role)
	assert.NotEmpty(t, brain.Strategy.ActivePillars)
}

func TestSeedsReturnFreshCopies(t *testing.T) {
	first := GoldBrain()
	first.Identity.Name = "mutated"

	second := GoldBrain()
	assert.Equal(t, "Maya Reyes", second.Identity.Name)
}

func TestEmptyPostInvariant(t *testing.T) {
	post := EmptyPost("post_1")
	assert.True(t, post.Valid())
	assert.Equal(t, TypeEmpty, post.Type)
	assert.Equal(t, StatusDraft, post.Status)

	post.Image = "sneaky.jpg"
	assert.False(t, post.Valid())

	post.Clear()
	assert.True(t, post.Valid())
	assert.Equal(t, "post_1", post.ID)
	assert.Empty(t, post.Image)
}

func TestClearPreservesSlotID(t *testing.T) {
	post := FeedPost{
		ID:      "slot_7",
		Image:   "beach.jpg",
		Caption: "low tide",
		Status:  StatusScheduled,
		Type:    TypeImage,
	}
	post.Clear()

	assert.Equal(t, "slot_7", post.ID)
	assert.Equal(t, TypeEmpty, post.Type)
	assert.Empty(t, post.Caption)
}
