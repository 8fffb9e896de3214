// Package domain contains core concepts of the mentoring chat system.
// This file defines Message records and conversation identity rules.
// Messages are immutable once persisted and are never deleted.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat record between two identities.
// Lang is the detected language of the body (ISO 639-3, "und" if unknown).
type Message struct {
	ID        uuid.UUID
	Sender    string
	Receiver  string
	Body      string
	Lang      string
	CreatedAt time.Time
}

// Pair returns the unordered conversation key for this message.
func (m Message) Pair() string {
	return PairKey(m.Sender, m.Receiver)
}

// PairKey builds the canonical key of the unordered pair {a, b}.
// The two identities are sorted so that PairKey(a, b) == PairKey(b, a),
// which is what makes conversation queries symmetric.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// ValidIdentity reports whether s can serve as a routing identity.
// Identities appear verbatim inside store keys, where ':' and '|' act
// as delimiters, so only ASCII letters and digits are accepted, 3 to
// 32 of them, matching the signup username rule.
func ValidIdentity(s string) bool {
	if len(s) < 3 || len(s) > 32 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// SplitPairKey is the inverse of PairKey.
func SplitPairKey(key string) (string, string) {
	parts := strings.SplitN(key, "|", 2)
	if len(parts) != 2 {
		return key, ""
	}
	return parts[0], parts[1]
}
