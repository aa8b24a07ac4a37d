// Copyright 2026 The FotoGeo Authors
// SPDX-License-Identifier: Apache-2.0

package geoloc

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jcodagnone/fotogeo/spatial"
	"github.com/jcodagnone/fotogeo/utils"
)

// RegionIndex provides keyword lookup of known region bounds. It is a
// configuration detail: a small table of city/region keywords mapped to a
// bounding box, used for the advisory validator bound, the aggregation
// region-hint bonus, and coarse object-detection guesses.
type RegionIndex struct {
	regions  map[string]*spatial.Region // key: folded keyword
	keywords []string                   // folded keywords, longest first, for deterministic Match
}

// regionEntry is the on-disk shape of one region table row.
type regionEntry struct {
	Region   spatial.Region `json:"region"`
	Keywords []string       `json:"keywords"`
}

// LoadRegions loads a region keyword table from a JSON file.
func LoadRegions(filepath string) (*RegionIndex, error) {
	data, err := os.ReadFile(filepath) // #nosec G304 - filepath is provided by admin
	if err != nil {
		return nil, fmt.Errorf("reading regions file: %w", err)
	}

	var entries []regionEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing regions JSON: %w", err)
	}

	return NewRegionIndex(entries), nil
}

// NewRegionIndex builds an index from region entries. Keywords are folded
// so lookups are accent- and case-insensitive.
func NewRegionIndex(entries []regionEntry) *RegionIndex {
	index := &RegionIndex{
		regions: make(map[string]*spatial.Region),
	}

	for i := range entries {
		region := entries[i].Region
		for _, kw := range entries[i].Keywords {
			folded := utils.LowerASCIIFolding(kw)
			if folded == "" {
				continue
			}

			r := region
			index.regions[folded] = &r
		}
	}

	for kw := range index.regions {
		index.keywords = append(index.keywords, kw)
	}

	// Longest keyword first so "saint petersburg" beats "petersburg";
	// lexicographic within a length so matching is deterministic.
	sort.Slice(index.keywords, func(i, j int) bool {
		if len(index.keywords[i]) != len(index.keywords[j]) {
			return len(index.keywords[i]) > len(index.keywords[j])
		}

		return index.keywords[i] < index.keywords[j]
	})

	return index
}

// DefaultRegionIndex returns the built-in table for the cities the service
// is deployed for.
func DefaultRegionIndex() *RegionIndex {
	return NewRegionIndex([]regionEntry{
		{
			Region:   spatial.Region{Name: "Moscow", MinLat: 55.1, MaxLat: 56.1, MinLng: 36.8, MaxLng: 38.5},
			Keywords: []string{"moscow", "москва", "moskva"},
		},
		{
			Region:   spatial.Region{Name: "Saint Petersburg", MinLat: 59.6, MaxLat: 60.3, MinLng: 29.4, MaxLng: 31.0},
			Keywords: []string{"saint petersburg", "st petersburg", "санкт-петербург", "петербург", "спб"},
		},
		{
			Region:   spatial.Region{Name: "Kazan", MinLat: 55.5, MaxLat: 56.0, MinLng: 48.7, MaxLng: 49.5},
			Keywords: []string{"kazan", "казань"},
		},
		{
			Region:   spatial.Region{Name: "Novosibirsk", MinLat: 54.7, MaxLat: 55.3, MinLng: 82.5, MaxLng: 83.3},
			Keywords: []string{"novosibirsk", "новосибирск"},
		},
		{
			Region:   spatial.Region{Name: "Yekaterinburg", MinLat: 56.6, MaxLat: 57.0, MinLng: 60.2, MaxLng: 60.9},
			Keywords: []string{"yekaterinburg", "ekaterinburg", "екатеринбург"},
		},
	})
}

// Match returns the region bound whose keyword appears in the given text,
// or nil when no keyword matches.
func (idx *RegionIndex) Match(text string) *spatial.Region {
	folded := utils.LowerASCIIFolding(text)
	if folded == "" {
		return nil
	}

	for _, kw := range idx.keywords {
		if strings.Contains(folded, kw) {
			return idx.regions[kw]
		}
	}

	return nil
}

// Lookup returns the region bound for an exact keyword, or nil.
func (idx *RegionIndex) Lookup(keyword string) *spatial.Region {
	return idx.regions[utils.LowerASCIIFolding(keyword)]
}

// Len returns the number of indexed keywords.
func (idx *RegionIndex) Len() int {
	return len(idx.regions)
}
