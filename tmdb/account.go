package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// NewRequestToken asks TMDB for a fresh, unapproved request token.
func (c *Client) NewRequestToken(ctx context.Context) (string, error) {
	var resp TokenResponse
	if err := c.Do(ctx, http.MethodGet, "/authentication/token/new", nil, nil, &resp); err != nil {
		return "", authError("request token", err)
	}
	if !resp.Success || resp.RequestToken == "" {
		return "", fmt.Errorf("%w: request token refused", ErrAuth)
	}

	c.logger.Debug().Str("expires_at", resp.ExpiresAt).Msg("Obtained TMDB request token")
	return resp.RequestToken, nil
}

// NewSession exchanges an approved request token for a session id.
func (c *Client) NewSession(ctx context.Context, requestToken string) (string, error) {
	if requestToken == "" {
		return "", fmt.Errorf("%w: empty request token", ErrAuth)
	}

	body := map[string]string{"request_token": requestToken}
	var resp SessionResponse
	if err := c.Do(ctx, http.MethodPost, "/authentication/session/new", nil, body, &resp); err != nil {
		return "", authError("create session", err)
	}
	if !resp.Success || resp.SessionID == "" {
		return "", fmt.Errorf("%w: session refused", ErrAuth)
	}

	c.logger.Info().Msg("Created TMDB session")
	return resp.SessionID, nil
}

// DeleteSession invalidates a session on the server.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrNotAuthenticated
	}

	body := map[string]string{"session_id": sessionID}
	var resp StatusResponse
	if err := c.Do(ctx, http.MethodDelete, "/authentication/session", nil, body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: session deletion refused", ErrAuth)
	}
	return nil
}

// Account resolves the account behind a session.
func (c *Client) Account(ctx context.Context, sessionID string) (*Account, error) {
	if sessionID == "" {
		return nil, ErrNotAuthenticated
	}

	var account Account
	if err := c.Do(ctx, http.MethodGet, "/account", sessionQuery(sessionID), nil, &account); err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// UserLists returns the custom lists created by an account.
func (c *Client) UserLists(ctx context.Context, accountID int64, sessionID string) ([]UserList, error) {
	if sessionID == "" {
		return nil, ErrNotAuthenticated
	}

	var resp UserListsResponse
	path := fmt.Sprintf("/account/%d/lists", accountID)
	if err := c.Do(ctx, http.MethodGet, path, sessionQuery(sessionID), nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get user lists: %w", err)
	}
	return resp.Results, nil
}

// AccountMovies returns the movies on one of the account's lists, in server order.
func (c *Client) AccountMovies(ctx context.Context, accountID int64, sessionID string, list ListKind) ([]Movie, error) {
	var resp MovieList
	if err := c.getAccountList(ctx, accountID, sessionID, list, MediaKindMovie, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// AccountSeries returns the series on one of the account's lists, in server order.
func (c *Client) AccountSeries(ctx context.Context, accountID int64, sessionID string, list ListKind) ([]Series, error) {
	var resp SeriesList
	if err := c.getAccountList(ctx, accountID, sessionID, list, MediaKindTV, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) getAccountList(ctx context.Context, accountID int64, sessionID string, list ListKind, kind MediaKind, out any) error {
	if sessionID == "" {
		return ErrNotAuthenticated
	}
	if !list.Valid() || !kind.Valid() {
		return fmt.Errorf("%w: unknown list %q/%q", ErrInvalidConfig, list, kind)
	}

	path := fmt.Sprintf("/account/%d/%s/%s", accountID, list, kind.accountSegment())
	if err := c.Do(ctx, http.MethodGet, path, sessionQuery(sessionID), nil, out); err != nil {
		return fmt.Errorf("failed to get %s %s: %w", list, kind, err)
	}
	return nil
}

// SetMembership adds (value=true) or removes an item from one of the
// account's lists. A response with success=false is reported as an error.
func (c *Client) SetMembership(ctx context.Context, accountID int64, sessionID string, list ListKind, kind MediaKind, mediaID int64, value bool) error {
	if sessionID == "" {
		return ErrNotAuthenticated
	}

	body := MembershipRequest{MediaType: kind, MediaID: mediaID}
	switch list {
	case ListFavorite:
		body.Favorite = &value
	case ListWatchlist:
		body.Watchlist = &value
	default:
		return fmt.Errorf("%w: unknown list %q", ErrInvalidConfig, list)
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown media kind %q", ErrInvalidConfig, kind)
	}

	path := fmt.Sprintf("/account/%d/%s", accountID, list)
	var resp StatusResponse
	if err := c.Do(ctx, http.MethodPost, path, sessionQuery(sessionID), body, &resp); err != nil {
		return fmt.Errorf("failed to update %s: %w", list, err)
	}
	if !resp.Success {
		return &APIError{
			StatusCode:    http.StatusOK,
			Code:          resp.StatusCode,
			StatusMessage: resp.StatusMessage,
			Path:          path,
		}
	}

	c.logger.Debug().
		Str("list", string(list)).
		Str("media_type", string(kind)).
		Int64("media_id", mediaID).
		Bool("value", value).
		Msg("Updated account list")
	return nil
}

func sessionQuery(sessionID string) url.Values {
	return url.Values{"session_id": {sessionID}}
}

// authError marks failures of the token/session endpoints as ErrAuth. The
// cause stays in the chain, so ErrNetwork and ErrDecode still match.
func authError(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrAuth, step, err)
}
