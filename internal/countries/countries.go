// Package countries resolves user-supplied country strings to canonical
// country names using the gountries reference list with fuzzy matching.
package countries

import (
	"errors"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/pariz/gountries"
)

// ErrNoMatch is returned when the input cannot be matched to any country.
var ErrNoMatch = errors.New("no matching country")

// maxDistance is the widest edit distance accepted by the fuzzy pass.
const maxDistance = 2

type entry struct {
	key       string // lowercased lookup key
	canonical string // common name to return
	fuzzy     bool   // codes are exact-match only
}

var (
	buildOnce sync.Once
	index     []entry
)

// buildIndex flattens the gountries dataset into lookup entries: common and
// official names (fuzzy-eligible) plus alpha-2/alpha-3 codes (exact only).
func buildIndex() {
	all := gountries.New().FindAllCountries()
	index = make([]entry, 0, len(all)*4)
	for _, c := range all {
		canonical := c.Name.Common
		if canonical == "" {
			continue
		}
		index = append(index,
			entry{key: strings.ToLower(c.Name.Common), canonical: canonical, fuzzy: true},
		)
		if c.Name.Official != "" {
			index = append(index, entry{key: strings.ToLower(c.Name.Official), canonical: canonical, fuzzy: true})
		}
		if c.Alpha2 != "" {
			index = append(index, entry{key: strings.ToLower(c.Alpha2), canonical: canonical})
		}
		if c.Alpha3 != "" {
			index = append(index, entry{key: strings.ToLower(c.Alpha3), canonical: canonical})
		}
	}
}

// Normalize returns the canonical name for a user-supplied country string.
// Matching is case-insensitive: exact name or ISO code first, then a fuzzy
// pass over names within a small edit distance. Returns ErrNoMatch when
// nothing is close enough.
func Normalize(input string) (string, error) {
	buildOnce.Do(buildIndex)

	needle := strings.ToLower(strings.TrimSpace(input))
	if needle == "" {
		return "", ErrNoMatch
	}

	for _, e := range index {
		if e.key == needle {
			return e.canonical, nil
		}
	}

	// Short inputs are code-like; edit distance on them is noise.
	if len(needle) < 4 {
		return "", ErrNoMatch
	}

	best := ""
	bestDist := maxDistance + 1
	for _, e := range index {
		if !e.fuzzy {
			continue
		}
		d := levenshtein.ComputeDistance(needle, e.key)
		if d < bestDist {
			best = e.canonical
			bestDist = d
		}
	}
	if bestDist > maxDistance {
		return "", ErrNoMatch
	}
	return best, nil
}
