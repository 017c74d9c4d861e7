package summary

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category names used in stoplist files and the results document.
const (
	CategoryCelebrities = "celebrities"
	CategoryEmotions    = "emotions"
	CategoryLabels      = "labels"
	CategoryKeyPhrases  = "keyphrases"
	CategoryLocations   = "locations"
	CategoryPersons     = "persons"
)

// Stoplists maps a category name to the entity names it excludes.
type Stoplists map[string][]string

// DefaultStoplists returns the built-in exclusions.
func DefaultStoplists() Stoplists {
	return Stoplists{
		CategoryLabels: {"human", "person", "people", "text"},
	}
}

// For returns the stoplist for category.
func (s Stoplists) For(category string) []string {
	return s[category]
}

// LoadStoplists reads a YAML mapping of category to names. Categories present
// in the file replace the built-in list; an empty path returns the defaults.
func LoadStoplists(path string) (Stoplists, error) {
	lists := DefaultStoplists()
	if strings.TrimSpace(path) == "" {
		return lists, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stoplist %s: %w", path, err)
	}
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse stoplist %s: %w", path, err)
	}
	for category, names := range raw {
		category = strings.ToLower(strings.TrimSpace(category))
		cleaned := make([]string, 0, len(names))
		for _, name := range names {
			if name = strings.TrimSpace(name); name != "" {
				cleaned = append(cleaned, name)
			}
		}
		lists[category] = cleaned
	}
	return lists, nil
}
