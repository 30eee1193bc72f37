package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Living Room":          "living-room",
		"  Beds & Headboards ": "beds-headboards",
		"Office/Study 2026":    "office-study-2026",
		"---":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestProductJSONShape(t *testing.T) {
	product := Product{
		ID:         "p-1",
		Title:      "Oslo Lounge Chair",
		Category:   "Chairs",
		Dimensions: ProductDimensions{W: 80, D: 85, H: 76.5},
		Published:  true,
	}

	out, err := json.Marshal(product)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, []any{}, decoded["materials"])
	assert.Equal(t, []any{}, decoded["tags"])
	assert.Equal(t, map[string]any{"w": 80.0, "d": 85.0, "h": 76.5}, decoded["dimensions"])
	assert.NotContains(t, decoded, "tagline")
	assert.Equal(t, true, decoded["published"])
}
