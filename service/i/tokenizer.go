package i

import "time"

// Tokenizer issues and verifies the bearer tokens that scope a client to a
// single game session.
type Tokenizer interface {
	// Generate signs claims, typically the session id, into a token that
	// stops verifying after ttl.
	Generate(claims map[string]any, ttl time.Duration) (string, error)

	// Decode rejects expired or tampered tokens and returns the claims of
	// a valid one.
	Decode(token string) (map[string]any, error)
}
