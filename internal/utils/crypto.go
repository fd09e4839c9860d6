package utils

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateReferralCode returns an 8-character code without ambiguous glyphs.
func GenerateReferralCode() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = referralAlphabet[int(b[i])%len(referralAlphabet)]
	}
	return string(b), nil
}

// NewReference returns a ledger reference.
func NewReference() string {
	return uuid.NewString()
}

// NewTicketNumber returns a ticket number like TKT-20240102-1A2B3C4D.
func NewTicketNumber(now time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("TKT-%s-%s", now.UTC().Format("20060102"), id[:8])
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its words with hyphens.
func Slugify(s string) string {
	return strings.Trim(slugStrip.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
