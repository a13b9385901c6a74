package submission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyCategories_SingleMatch(t *testing.T) {
	got := ClassifyCategories("Fed raises rates again", "Inflation fears persist as CPI climbs")
	assert.Contains(t, got, CategoryEconomy)
}

func TestClassifyCategories_MultipleMatches(t *testing.T) {
	got := ClassifyCategories("Oil prices surge amid OPEC cuts", "Crude oil and energy markets react")
	assert.Contains(t, got, CategoryEnergy)
}

func TestClassifyCategories_NoMatch(t *testing.T) {
	got := ClassifyCategories("Local bakery wins award", "A heartwarming community story")
	assert.Empty(t, got)
}

func TestClassifyCategories_CaseInsensitive(t *testing.T) {
	got := ClassifyCategories("NASDAQ Rallies", "Stocks and shares climb on tech earnings")
	assert.Contains(t, got, CategoryMarkets)
}
