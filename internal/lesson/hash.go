package lesson

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// hashPayload serializes the lower-cased request triple. Fields are declared
// in alphabetical order so encoding/json emits a stable key ordering.
type hashPayload struct {
	Audience string `json:"audience"`
	Duration string `json:"duration"`
	Subject  string `json:"subject"`
}

// Hash returns the SHA-256 idempotency digest of the request. Two requests
// that differ only in subject case or whitespace hash identically.
func (r Request) Hash() string {
	payload := hashPayload{
		Audience: strings.ToLower(string(r.Audience)),
		Duration: strings.ToLower(string(r.Duration)),
		Subject:  strings.ToLower(r.Subject),
	}
	b, _ := json.Marshal(payload)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
