package identity

import (
	"context"
	"errors"
)

// ErrNoSession is returned when no authenticated user can be resolved.
var ErrNoSession = errors.New("no active session")

// Provider resolves the current user's identity. Callers re-resolve identity
// per operation rather than caching it; a payment flow spans an out-of-process
// detour and the session may change underneath it.
type Provider interface {
	// CurrentUserID returns the authenticated user's identifier, or
	// ErrNoSession when the session is absent or expired.
	CurrentUserID(ctx context.Context) (string, error)

	// TerminateSession forcibly ends the current session so the user must
	// re-authenticate.
	TerminateSession(ctx context.Context) error
}

type contextKey struct{}

// WithToken attaches a session token to the context. The transport layer calls
// this when it extracts the token from an incoming request.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKey{}, token)
}

// TokenFromContext returns the session token carried by the context, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(contextKey{}).(string)
	return token, ok && token != ""
}

// SessionStore is the persistence behind SessionProvider.
type SessionStore interface {
	// UserID resolves a session token to a user identifier. A missing
	// session yields empty string with no error.
	UserID(ctx context.Context, token string) (string, error)

	// Delete removes a session.
	Delete(ctx context.Context, token string) error
}

// SessionProvider is a Provider backed by a session store keyed by the token
// carried in the request context.
type SessionProvider struct {
	sessions SessionStore
}

// NewSessionProvider creates a session-store-backed identity provider.
func NewSessionProvider(sessions SessionStore) *SessionProvider {
	return &SessionProvider{sessions: sessions}
}

// CurrentUserID resolves the context's session token against the store.
func (p *SessionProvider) CurrentUserID(ctx context.Context) (string, error) {
	token, ok := TokenFromContext(ctx)
	if !ok {
		return "", ErrNoSession
	}

	userID, err := p.sessions.UserID(ctx, token)
	if err != nil {
		return "", err
	}
	if userID == "" {
		return "", ErrNoSession
	}
	return userID, nil
}

// TerminateSession deletes the session behind the context's token. Absence of
// a token is not an error; there is simply nothing left to terminate.
func (p *SessionProvider) TerminateSession(ctx context.Context) error {
	token, ok := TokenFromContext(ctx)
	if !ok {
		return nil
	}
	return p.sessions.Delete(ctx, token)
}
