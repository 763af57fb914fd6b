// ABOUTME: In-memory credential store holding principals seeded from configuration
// ABOUTME: Verifies username/password pairs with bcrypt and exposes authority lookups

package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Credential errors
var (
	ErrUnknownPrincipal = errors.New("unknown principal")
	ErrBadCredentials   = errors.New("invalid credentials")
	ErrAccountDisabled  = errors.New("account disabled")
)

// Canonical authorities for the default deployment. Authorities are opaque
// capability tags compared by set membership; there is no hierarchy and no
// separate role concept.
const (
	AuthorityAdmin = "ADMIN"
	AuthorityUser  = "USER"
	AuthorityRead  = "READ"
	AuthorityWrite = "WRITE"
)

// Principal is an identity with credentials and a set of granted authorities.
// Principals are provisioned at process start and immutable thereafter, so
// the store needs no locking for reads.
type Principal struct {
	Username     string
	PasswordHash []byte
	Authorities  []string
	Disabled     bool
}

// Seed is the configuration-time form of a principal, carrying the plaintext
// password that is hashed when the store is built.
type Seed struct {
	Username    string
	Password    string
	Authorities []string
	Disabled    bool
}

// CredentialStore is a read-only registry of principals.
type CredentialStore struct {
	principals map[string]*Principal
}

// NewCredentialStore builds a store from config seeds, hashing each password
// with bcrypt.
func NewCredentialStore(seeds []Seed) (*CredentialStore, error) {
	principals := make(map[string]*Principal, len(seeds))
	for _, seed := range seeds {
		if seed.Username == "" {
			return nil, fmt.Errorf("principal with empty username")
		}
		if _, exists := principals[seed.Username]; exists {
			return nil, fmt.Errorf("duplicate principal %q", seed.Username)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password for %q: %w", seed.Username, err)
		}
		principals[seed.Username] = &Principal{
			Username:     seed.Username,
			PasswordHash: hash,
			Authorities:  append([]string(nil), seed.Authorities...),
			Disabled:     seed.Disabled,
		}
	}
	return &CredentialStore{principals: principals}, nil
}

// Lookup returns the principal with the given username, or
// ErrUnknownPrincipal.
func (s *CredentialStore) Lookup(username string) (*Principal, error) {
	p, ok := s.principals[username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPrincipal, username)
	}
	return p, nil
}

// Verify checks a username/password pair. An unknown username or a password
// mismatch both surface as ErrBadCredentials so callers cannot distinguish
// them. A disabled account is reported only after the password matched, as
// ErrAccountDisabled. On success the full principal is returned.
func (s *CredentialStore) Verify(username, password string) (*Principal, error) {
	p, ok := s.principals[username]
	if !ok {
		return nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(p.PasswordHash, []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	if p.Disabled {
		return nil, ErrAccountDisabled
	}
	return p, nil
}

// HasAny reports whether the named principal's authorities intersect the
// given set. Unknown usernames report false rather than an error.
func (s *CredentialStore) HasAny(username string, authorities []string) bool {
	p, ok := s.principals[username]
	if !ok {
		return false
	}
	id := Identity{Username: p.Username, Authorities: p.Authorities}
	return id.HasAny(authorities)
}
