// Package stack implements the QR transfer pairing record: an ephemeral,
// TTL-bound, publicly-keyed record carrying a batch of plain note strings
// from the web companion to the phone app.
package stack

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"
)

// DefaultTTL is how long a record stays importable after creation.
const DefaultTTL = 5 * time.Minute

const (
	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 12

	deepLinkScheme = "ennote"
	deepLinkHost   = "stack"
)

// Stack is the pairing record. The web companion creates it; the phone app
// reads it once and marks it fetched. Nobody updates Notes after creation.
type Stack struct {
	ID        string    `json:"id"`
	Notes     []string  `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Fetched   bool      `json:"fetched"`
}

// New builds a record with a fresh id and ExpiresAt = CreatedAt + ttl.
func New(notes []string, ttl time.Duration) (Stack, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	id, err := NewID()
	if err != nil {
		return Stack{}, err
	}
	now := time.Now().UTC()
	return Stack{
		ID:        id,
		Notes:     notes,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// Expired reports whether the record is past its TTL. Expiry is evaluated by
// the consumer; the store never deletes expired records.
func (s Stack) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// TimeRemaining is how long the record stays importable, floored at zero.
func (s Stack) TimeRemaining(now time.Time) time.Duration {
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// DeepLink is the URI embedded in the QR code.
func (s Stack) DeepLink() string {
	return fmt.Sprintf("%s://%s/%s", deepLinkScheme, deepLinkHost, s.ID)
}

// NewID generates a random 12-character alphanumeric record key.
func NewID() (string, error) {
	var b strings.Builder
	b.Grow(idLength)
	max := big.NewInt(int64(len(idAlphabet)))
	for i := 0; i < idLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate stack id: %w", err)
		}
		b.WriteByte(idAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// ParseDeepLink extracts the record id from a scanned URI. Any URI not
// matching scheme "ennote", host "stack", and a non-empty first path segment
// is rejected.
func ParseDeepLink(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if u.Scheme != deepLinkScheme || u.Host != deepLinkHost {
		return "", false
	}
	id := strings.TrimPrefix(u.Path, "/")
	if i := strings.IndexByte(id, '/'); i >= 0 {
		id = id[:i]
	}
	if id == "" {
		return "", false
	}
	return id, true
}
