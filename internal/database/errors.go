// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package database

import "errors"

// Sentinel errors for the store. Callers match them with errors.Is to map
// missing references onto 404 responses.
var (
	// ErrUserNotFound means the referenced user id does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrContentNotFound means the referenced content id does not exist.
	ErrContentNotFound = errors.New("content not found")
)
