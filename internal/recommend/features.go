// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package recommend

import (
	"time"

	"github.com/mwenger0/cursora/internal/models"
)

// maxOverlapReasonTags is how many matched tags become reason tags.
const maxOverlapReasonTags = 2

// TagOverlap returns the number of tags shared between the user's interests
// and the content's tags, plus up to two of the matching tags in
// user-interest order. The returned tags become the leading reason tags.
func TagOverlap(interests, tags []string) (int, []string) {
	if len(interests) == 0 || len(tags) == 0 {
		return 0, nil
	}

	tagSet := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		tagSet[t] = struct{}{}
	}

	count := 0
	var matched []string
	seen := make(map[string]struct{}, len(interests))
	for _, interest := range interests {
		if _, dup := seen[interest]; dup {
			continue
		}
		seen[interest] = struct{}{}
		if _, ok := tagSet[interest]; ok {
			count++
			if len(matched) < maxOverlapReasonTags {
				matched = append(matched, interest)
			}
		}
	}

	return count, matched
}

// difficultyTable maps skill level -> content difficulty -> match factor.
var difficultyTable = map[models.SkillLevel]map[models.Difficulty]float64{
	models.SkillNovice: {
		models.DifficultyBeginner:     1.0,
		models.DifficultyIntermediate: 0.5,
		models.DifficultyAdvanced:     0.2,
	},
	models.SkillIntermediate: {
		models.DifficultyBeginner:     0.5,
		models.DifficultyIntermediate: 1.0,
		models.DifficultyAdvanced:     0.7,
	},
	models.SkillExpert: {
		models.DifficultyBeginner:     0.3,
		models.DifficultyIntermediate: 0.7,
		models.DifficultyAdvanced:     1.0,
	},
}

// neutralDifficultyFactor applies when the skill level or difficulty is
// outside the lookup table.
const neutralDifficultyFactor = 0.5

// DifficultyFactor returns the skill/difficulty match factor before
// weighting. Unknown skill levels and unknown difficulties both fall back
// to the neutral 0.5.
func DifficultyFactor(skill models.SkillLevel, difficulty models.Difficulty) float64 {
	row, ok := difficultyTable[skill]
	if !ok {
		return neutralDifficultyFactor
	}
	factor, ok := row[difficulty]
	if !ok {
		return neutralDifficultyFactor
	}
	return factor
}

// AgeDays returns the content age in whole days at the given instant.
// Future creation times yield zero rather than a negative age.
func AgeDays(createdAt, now time.Time) float64 {
	days := now.Sub(createdAt).Hours() / 24
	if days < 0 {
		return 0
	}
	return float64(int(days))
}
