// Package passwords hashes and verifies user passwords with bcrypt.
package passwords

import (
	"fmt"

	"github.com/jrazmi/tasklists/sdk/environment"
	"golang.org/x/crypto/bcrypt"
)

// Options is the exportable hashing configuration.
type Options struct {
	Cost int `env:"BCRYPT_COST" default:"10"`
}

// Bcrypt hashes passwords with a fixed cost. The zero value uses bcrypt.DefaultCost.
type Bcrypt struct {
	Cost int
}

// NewBcrypt returns a hasher using cost, clamped to the range bcrypt accepts.
func NewBcrypt(cost int) Bcrypt {
	switch {
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return Bcrypt{Cost: cost}
}

// NewFromEnv returns a hasher with the cost read from the environment.
func NewFromEnv(prefix string) (Bcrypt, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return Bcrypt{}, fmt.Errorf("parsing password config: %w", err)
	}
	return NewBcrypt(cfg.Cost), nil
}

// Hash returns a salted digest of plaintext.
func (b Bcrypt) Hash(plaintext string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. Malformed digests never match.
func (b Bcrypt) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
