package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReferralCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateReferralCode()
		require.NoError(t, err)
		assert.Len(t, code, 8)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(referralAlphabet, r), "unexpected rune %q", r)
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestNewTicketNumber(t *testing.T) {
	now := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	n := NewTicketNumber(now)
	assert.True(t, strings.HasPrefix(n, "TKT-20240309-"))
	assert.Len(t, n, len("TKT-20240309-")+8)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  New: Plans & Fees!  ", "new-plans-fees"},
		{"2024 Update", "2024-update"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in))
	}
}
