package tmdb

import (
	"context"
	"net/url"
)

// Requester is the single request contract every catalog call goes through
type Requester interface {
	Do(ctx context.Context, method, path string, query url.Values, body, out any) error
}

// Authenticator performs the request-token handshake
type Authenticator interface {
	// NewRequestToken obtains a token the user must approve externally
	NewRequestToken(ctx context.Context) (string, error)

	// NewSession exchanges an approved token for a session id
	NewSession(ctx context.Context, requestToken string) (string, error)

	// ApprovalURL is where the user approves a request token
	ApprovalURL(requestToken string) string
}

// AccountAPI resolves accounts and reads/writes their lists
type AccountAPI interface {
	Account(ctx context.Context, sessionID string) (*Account, error)
	AccountMovies(ctx context.Context, accountID int64, sessionID string, list ListKind) ([]Movie, error)
	AccountSeries(ctx context.Context, accountID int64, sessionID string, list ListKind) ([]Series, error)
	SetMembership(ctx context.Context, accountID int64, sessionID string, list ListKind, kind MediaKind, mediaID int64, value bool) error
}

var (
	_ Requester     = (*Client)(nil)
	_ Authenticator = (*Client)(nil)
	_ AccountAPI    = (*Client)(nil)
)
