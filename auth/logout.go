package auth

import (
	"context"

	"github.com/rs/zerolog"
)

// SessionDeleter invalidates a session on the server
type SessionDeleter interface {
	DeleteSession(ctx context.Context, sessionID string) error
}

// SessionClearer is the local side of a logout
type SessionClearer interface {
	Current() string
	Clear() error
}

// Logout deletes the session on the server, then clears it locally. The
// server call is best effort: an unreachable service must not keep the
// user signed in, so its failure is only logged.
func Logout(ctx context.Context, api SessionDeleter, sessions SessionClearer, logger zerolog.Logger) error {
	sessionID := sessions.Current()
	if sessionID == "" {
		return nil
	}

	if api != nil {
		if err := api.DeleteSession(ctx, sessionID); err != nil {
			logger.Warn().Err(err).Msg("Failed to delete session on server")
		}
	}

	return sessions.Clear()
}
