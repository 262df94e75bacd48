package variations

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Entry is one (category, value) choice within a product's variation
// vocabulary, e.g. (color, red) or (size, xl).
type Entry struct {
	Category string `json:"category"`
	Value    string `json:"value"`
}

// Selection is the set of entries identifying a purchasable configuration.
type Selection []Entry

// Normalize trims and lower-cases every entry, sorts the set by category,
// and rejects selections carrying more than one value per category.
func Normalize(sel Selection) (Selection, error) {
	normalized := make(Selection, 0, len(sel))
	seen := make(map[string]struct{}, len(sel))
	for _, entry := range sel {
		category := strings.ToLower(strings.TrimSpace(entry.Category))
		value := strings.ToLower(strings.TrimSpace(entry.Value))
		if category == "" || value == "" {
			return nil, fmt.Errorf("variations: empty category or value")
		}
		if _, dup := seen[category]; dup {
			return nil, fmt.Errorf("variations: duplicate category %q", category)
		}
		seen[category] = struct{}{}
		normalized = append(normalized, Entry{Category: category, Value: value})
	}
	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].Category < normalized[j].Category
	})
	return normalized, nil
}

// Hash returns the hex sha-256 of the normalized set. The hash backs the
// uniqueness key on cart rows, so the same selection always hashes the same
// regardless of input order.
func Hash(sel Selection) (string, error) {
	normalized, err := Normalize(sel)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	for _, entry := range normalized {
		fmt.Fprintf(h, "%s=%s;", entry.Category, entry.Value)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Equal reports set equality of two selections, independent of order.
// Empty selections are equal to each other and to nothing else.
func Equal(a, b Selection) (bool, error) {
	na, err := Normalize(a)
	if err != nil {
		return false, err
	}
	nb, err := Normalize(b)
	if err != nil {
		return false, err
	}
	if len(na) != len(nb) {
		return false, nil
	}
	for i := range na {
		if na[i] != nb[i] {
			return false, nil
		}
	}
	return true, nil
}
