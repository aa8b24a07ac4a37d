// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geoloc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionIndexMatch(t *testing.T) {
	idx := DefaultRegionIndex()

	tests := []struct {
		name string
		text string
		want string // region name, or "" for no match
	}{
		{
			name: "english city name",
			text: "Moscow",
			want: "Moscow",
		},
		{
			name: "cyrillic city name inside a sentence",
			text: "фото сделано в Москве... нет, точно Москва",
			want: "Moscow",
		},
		{
			name: "case and accents folded",
			text: "MOSCOW city center",
			want: "Moscow",
		},
		{
			name: "longest keyword wins",
			text: "Saint Petersburg",
			want: "Saint Petersburg",
		},
		{
			name: "short alias",
			text: "спб",
			want: "Saint Petersburg",
		},
		{
			name: "unknown place",
			text: "Montevideo",
			want: "",
		},
		{
			name: "empty text",
			text: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region := idx.Match(tt.text)
			if tt.want == "" {
				assert.Nil(t, region)

				return
			}

			require.NotNil(t, region)
			assert.Equal(t, tt.want, region.Name)
		})
	}
}

func TestRegionIndexLookup(t *testing.T) {
	idx := DefaultRegionIndex()

	require.NotNil(t, idx.Lookup("kazan"))
	require.NotNil(t, idx.Lookup("КАЗАНЬ"))
	assert.Nil(t, idx.Lookup("atlantis"))
}

func TestLoadRegions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "regions.json")

	payload := `[
		{
			"region": {"name": "Testville", "min_lat": 10, "max_lat": 11, "min_lng": 20, "max_lng": 21},
			"keywords": ["testville", "тествиль"]
		}
	]`

	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	idx, err := LoadRegions(path)
	require.NoError(t, err)

	assert.Equal(t, 2, idx.Len())

	region := idx.Match("near Testville station")
	require.NotNil(t, region)
	assert.Equal(t, "Testville", region.Name)

	center := region.Center()
	assert.InDelta(t, 10.5, center.Lat, 1e-9)
	assert.InDelta(t, 20.5, center.Lng, 1e-9)
}

func TestLoadRegionsMissingFile(t *testing.T) {
	_, err := LoadRegions(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
