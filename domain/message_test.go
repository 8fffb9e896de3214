package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPairKey_IsSymmetric(t *testing.T) {
	req := require.New(t)
	req.Equal(PairKey("alice", "bob"), PairKey("bob", "alice"))
	req.Equal("alice|bob", PairKey("bob", "alice"))
}

func TestValidIdentity(t *testing.T) {
	tests := []struct {
		identity string
		want     bool
	}{
		{"alice", true},
		{"Bob42", true},
		{strings.Repeat("a", 32), true},
		// Store keys use ':' and '|' as delimiters; identities carrying
		// them would alias other users' conv:/inbox: prefixes.
		{"bob:evil", false},
		{"bob|x", false},
		{"inbox:bob", false},
		{"bob evil", false},
		{"böb", false},
		{"", false},
		{"ab", false},
		{strings.Repeat("a", 33), false},
	}

	for _, tt := range tests {
		if got := ValidIdentity(tt.identity); got != tt.want {
			t.Errorf("ValidIdentity(%q) = %v, want %v", tt.identity, got, tt.want)
		}
	}
}
