// Package token generates the unique secret behind every issued QR code.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Generator produces opaque credential tokens. Uniqueness is statistical:
// the random UUID component makes repeats practically impossible, and no
// collision check is performed before insert.
type Generator struct {
	clock clockwork.Clock
}

// NewGenerator creates a Generator using the given clock for the timestamp
// component.
func NewGenerator(clock clockwork.Clock) *Generator {
	return &Generator{clock: clock}
}

// New returns a fresh 64-character lowercase hex token. A random UUID is
// concatenated with a millisecond timestamp and hashed with SHA-256 so the
// output carries no visible structure from either component.
func (g *Generator) New() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate uuid: %w", err)
	}

	now := g.clock.Now()
	stamp := fmt.Sprintf("%s%03d", now.Format("20060102150405"), now.Nanosecond()/1e6)

	digest := sha256.Sum256([]byte(id.String() + "-" + stamp))
	return hex.EncodeToString(digest[:]), nil
}
