package utils

import (
	"cmp"
	"crypto/sha1"
	"encoding/hex"
	"slices"
)

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// HashContent returns the lowercase hex SHA-1 of content. Every object id in
// a repository is produced by this function.
func HashContent(content []byte) string {
	hash := sha1.Sum(content)
	return hex.EncodeToString(hash[:])
}

// IsValidID reports whether id is a full object id: 40 lowercase hex
// characters, as produced by HashContent.
func IsValidID(id string) bool {
	if len(id) != sha1.Size*2 {
		return false
	}
	return IsHexPrefix(id)
}

// IsHexPrefix reports whether s consists only of lowercase hex characters.
func IsHexPrefix(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}
