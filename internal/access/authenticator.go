// Package access verifies bearer tokens and maps them to roles. The HTTP layer
// consults it once per write request; the booking services never see identity.
package access

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	rejectedTokenCacheSize = 1024
	maxConcurrentVerifies  = 2
)

// Role is the capability level attached to a token.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
)

// ErrUnknownToken is returned when no configured token matches.
var ErrUnknownToken = errors.New("access: unknown token")

// ParseRole validates a role name.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return Role(value), nil
	}
	return "", fmt.Errorf("access: unknown role %q", value)
}

// Principal identifies the caller behind a verified token.
type Principal struct {
	Name string
	Role Role
}

// CanWrite reports whether the principal may modify data.
func (p Principal) CanWrite() bool {
	return p.Role == RoleSuperAdmin || p.Role == RoleAdmin
}

// Credential is a named token hash with its role.
type Credential struct {
	Name string
	Role Role
	Hash string
}

// TokenAuthenticator checks bearer tokens against argon2id hashes. Verified
// tokens are remembered by digest so the key derivation runs once per token.
// Rejected digests are kept in a bounded LRU and at most
// maxConcurrentVerifies derivations run at a time.
type TokenAuthenticator struct {
	credentials []Credential
	verify      func(encodedHash, token string) error

	mu       sync.RWMutex
	verified map[[sha256.Size]byte]Principal
	rejected *lru.Cache[[sha256.Size]byte, struct{}]
	slots    chan struct{}
}

// NewTokenAuthenticator builds an authenticator over credentials.
func NewTokenAuthenticator(credentials []Credential) *TokenAuthenticator {
	// lru.New only fails for a non-positive size.
	rejected, _ := lru.New[[sha256.Size]byte, struct{}](rejectedTokenCacheSize)
	return &TokenAuthenticator{
		credentials: append([]Credential(nil), credentials...),
		verify:      VerifyToken,
		verified:    make(map[[sha256.Size]byte]Principal),
		rejected:    rejected,
		slots:       make(chan struct{}, maxConcurrentVerifies),
	}
}

// Authenticate resolves token to a principal.
func (a *TokenAuthenticator) Authenticate(ctx context.Context, token string) (Principal, error) {
	if a == nil || token == "" {
		return Principal{}, ErrUnknownToken
	}

	digest := sha256.Sum256([]byte(token))
	if principal, ok := a.lookup(digest); ok {
		return principal, nil
	}
	if a.rejected.Contains(digest) {
		return Principal{}, ErrUnknownToken
	}

	select {
	case a.slots <- struct{}{}:
	case <-ctx.Done():
		return Principal{}, ctx.Err()
	}
	defer func() { <-a.slots }()

	// Another request may have resolved the same token while this one waited.
	if principal, ok := a.lookup(digest); ok {
		return principal, nil
	}
	if a.rejected.Contains(digest) {
		return Principal{}, ErrUnknownToken
	}

	for _, credential := range a.credentials {
		if err := ctx.Err(); err != nil {
			return Principal{}, err
		}
		if err := a.verify(credential.Hash, token); err != nil {
			continue
		}
		principal := Principal{Name: credential.Name, Role: credential.Role}
		a.mu.Lock()
		a.verified[digest] = principal
		a.mu.Unlock()
		return principal, nil
	}
	a.rejected.Add(digest, struct{}{})
	return Principal{}, ErrUnknownToken
}

func (a *TokenAuthenticator) lookup(digest [sha256.Size]byte) (Principal, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	principal, ok := a.verified[digest]
	return principal, ok
}
