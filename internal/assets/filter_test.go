package assets

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

func TestFilterAssets_NoCandidatesShortCircuits(t *testing.T) {
	f := NewFilter(stubGenerator{response: "should never be read"})
	got, err := f.FilterAssets(context.Background(), "some article text", nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFilterAssets_WellFormedResponse(t *testing.T) {
	f := NewFilter(stubGenerator{response: `[{"asset":"DXY","reason":"dollar strength","impact":"positive"}]`})
	got, err := f.FilterAssets(context.Background(), "the dollar rallied", []string{"DXY"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "DXY", got[0].Asset)
	assert.Equal(t, core.ImpactPositive, got[0].Impact)
}

func TestFilterAssets_InvalidImpactYieldsEmpty(t *testing.T) {
	f := NewFilter(stubGenerator{response: `[{"asset":"DXY","reason":"x","impact":"bullish"}]`})
	got, err := f.FilterAssets(context.Background(), "text", []string{"DXY"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFilterAssets_UnparsableResponseYieldsEmpty(t *testing.T) {
	f := NewFilter(stubGenerator{response: "not json at all"})
	got, err := f.FilterAssets(context.Background(), "text", []string{"DXY"})
	require.NoError(t, err)
	assert.Nil(t, got)
}
