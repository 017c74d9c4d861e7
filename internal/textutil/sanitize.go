package textutil

import (
	"path"
	"strconv"
	"strings"
)

// SanitizeEntityName converts an entity name to the basename used for cue and
// meta files. Letters are lowercased; anything outside [a-zA-Z0-9-_.] becomes
// an underscore.
func SanitizeEntityName(name string) string {
	lowered := strings.ToLower(name)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// ShardIndex returns the integer suffix of a shard key's base name
// ("celebs12.json" -> 12). Keys without a numeric suffix sort as shard 1.
func ShardIndex(key string) int {
	name := BaseName(key)
	end := len(name)
	start := end
	for start > 0 && name[start-1] >= '0' && name[start-1] <= '9' {
		start--
	}
	if start == end {
		return 1
	}
	idx, err := strconv.Atoi(name[start:end])
	if err != nil {
		return 1
	}
	return idx
}

// BaseName returns the final path element of key without its extension.
func BaseName(key string) string {
	base := path.Base(strings.ReplaceAll(key, "\\", "/"))
	if ext := path.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
