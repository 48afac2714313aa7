// Package session implements the server-side session store. A session
// is keyed by an opaque random token carried in an HTTP-only cookie and
// holds the authenticated identity, an optional post-login redirect
// target and single-read flash messages. The primary implementation is
// Redis-backed so sessions survive process restarts; an in-memory store
// exists as a degraded fallback for development and for tests.
package session

import (
	"context"

	"github.com/iliyamo/go-blog/internal/model"
	"github.com/iliyamo/go-blog/internal/utils"
)

// Flash message kinds. A flash is written once and consumed exactly
// once by the next rendered response.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash carries the at-most-one success and error message attached to a
// session.
type Flash struct {
	Success string
	Error   string
}

// Store is the session contract. Destroying a session that does not
// exist is a no-op, not an error. Writes against an unknown token are
// silently dropped: the session may simply have expired.
type Store interface {
	// Create starts a session and returns its opaque token. userID 0
	// creates an anonymous session, used to carry returnTo across the
	// login redirect for guests.
	Create(ctx context.Context, userID uint64, username string) (string, error)
	// Resolve maps a token to the authenticated identity. It returns
	// (nil, nil) for unknown tokens and for anonymous sessions.
	Resolve(ctx context.Context, token string) (*model.Identity, error)
	Destroy(ctx context.Context, token string) error
	SetFlash(ctx context.Context, token, kind, message string) error
	// PopFlash reads and clears both flash slots in one step.
	PopFlash(ctx context.Context, token string) (Flash, error)
	SetReturnTo(ctx context.Context, token, target string) error
	PopReturnTo(ctx context.Context, token string) (string, error)
}

// NewToken generates an opaque 64-hex-character session token.
func NewToken() (string, error) {
	return utils.RandomHex(32)
}
