package transcript

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dictionary maps a spoken phrase (words separated by single spaces, matched
// case-sensitively) to its corrected rendering.
type Dictionary map[string]string

// Lookup returns the correction for phrase. Hyphens are treated as spaces;
// when no entry exists the normalized phrase is returned with ok false.
func (d Dictionary) Lookup(phrase string) (string, bool) {
	words := strings.ReplaceAll(phrase, "-", " ")
	if replacement, ok := d[words]; ok {
		return replacement, true
	}
	return words, false
}

// LoadDictionary reads a YAML mapping of phrase to replacement. An empty path
// yields an empty dictionary.
func LoadDictionary(path string) (Dictionary, error) {
	if strings.TrimSpace(path) == "" {
		return Dictionary{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	return ParseDictionary(data)
}

// ParseDictionary decodes a YAML phrase dictionary.
func ParseDictionary(data []byte) (Dictionary, error) {
	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse dictionary: %w", err)
	}
	dict := make(Dictionary, len(raw))
	for phrase, replacement := range raw {
		key := strings.Join(strings.Fields(strings.ReplaceAll(phrase, "-", " ")), " ")
		if key == "" {
			continue
		}
		dict[key] = replacement
	}
	return dict, nil
}
