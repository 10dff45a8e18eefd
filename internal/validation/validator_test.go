// Cursora - Learning Content Recommendation and Engagement Analytics
// Copyright 2026 M. Wenger (mwenger0)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mwenger0/cursora

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	UserID    string  `validate:"required"`
	EventType string  `validate:"required,oneof=view complete like quiz_score bookmark share"`
	K         int     `validate:"min=1,max=50"`
	Value     float64 `validate:"gte=0,lte=100"`
}

func TestValidateStructPasses(t *testing.T) {
	req := sampleRequest{UserID: "user_1", EventType: "view", K: 10, Value: 85}
	assert.Nil(t, ValidateStruct(&req))
}

func TestValidateStructRequired(t *testing.T) {
	req := sampleRequest{EventType: "view", K: 10}
	verr := ValidateStruct(&req)
	require.NotNil(t, verr)

	apiErr := verr.ToAPIError()
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Contains(t, apiErr.Message, "UserID is required")
}

func TestValidateStructOneOf(t *testing.T) {
	req := sampleRequest{UserID: "user_1", EventType: "skim", K: 10}
	verr := ValidateStruct(&req)
	require.NotNil(t, verr)
	assert.Contains(t, verr.Error(), "EventType must be one of")
}

func TestValidateStructRange(t *testing.T) {
	req := sampleRequest{UserID: "user_1", EventType: "view", K: 99}
	verr := ValidateStruct(&req)
	require.NotNil(t, verr)

	errs := verr.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "K", errs[0].Field())
	assert.Equal(t, "max", errs[0].Tag())
	assert.Equal(t, "50", errs[0].Param())
}

func TestToAPIErrorMultipleFields(t *testing.T) {
	req := sampleRequest{K: 0, Value: 200}
	verr := ValidateStruct(&req)
	require.NotNil(t, verr)
	require.Greater(t, len(verr.Errors()), 1)

	apiErr := verr.ToAPIError()
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Contains(t, apiErr.Details, "fields")
}
