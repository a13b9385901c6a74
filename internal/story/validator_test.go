package story

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyengine/internal/core"
)

type stubGenerator struct {
	response string
	err      error
}

func (s stubGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return s.response, s.err
}

func TestValidateSchema_NotAStorySkipsFieldChecks(t *testing.T) {
	err := validateSchema(validationResponse{IsStory: false})
	assert.NoError(t, err)
}

func TestValidateSchema_InvalidSignalStrength(t *testing.T) {
	err := validateSchema(validationResponse{IsStory: true, SignalStrength: "extreme", ConfidenceScore: 0.5})
	assert.Error(t, err)
}

func TestValidateSchema_ConfidenceOutOfRange(t *testing.T) {
	err := validateSchema(validationResponse{IsStory: true, SignalStrength: core.SignalStrong, ConfidenceScore: 1.5})
	assert.Error(t, err)
}

func TestValidateSchema_Valid(t *testing.T) {
	err := validateSchema(validationResponse{IsStory: true, SignalStrength: core.SignalMedium, ConfidenceScore: 0.7})
	assert.NoError(t, err)
}

func TestValidate_WellFormedResponse(t *testing.T) {
	v := NewClusterValidator(stubGenerator{response: `{"is_story":true,"signal_strength":"strong","confidence_score":0.9,"reasoning":"shared entities"}`})
	result, err := v.Validate(context.Background(), []string{"Fed raises rates", "Fed hikes again"}, []string{"federal reserve"})
	require.NoError(t, err)
	assert.True(t, result.IsStory)
	assert.Equal(t, core.SignalStrong, result.SignalStrength)
}

func TestValidate_MalformedResponseYieldsNotAStory(t *testing.T) {
	v := NewClusterValidator(stubGenerator{response: "not json"})
	result, err := v.Validate(context.Background(), []string{"a", "b"}, nil)
	require.NoError(t, err)
	assert.False(t, result.IsStory)
}
