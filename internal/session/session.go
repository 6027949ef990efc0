// Package session derives the caller's identity from headers set by the
// authenticating proxy in front of the server.
package session

import (
	"errors"
	"net/http"
	"strings"
)

// DefaultHeader carries the authenticated user ID when none is configured
const DefaultHeader = "X-User-ID"

// ErrNoSession means the request carries no user identity
var ErrNoSession = errors.New("no authenticated user")

// Session identifies the user a request acts for
type Session struct {
	UserID string
}

// FromRequest reads the user ID from header (DefaultHeader when empty)
func FromRequest(r *http.Request, header string) (Session, error) {
	if header == "" {
		header = DefaultHeader
	}
	userID := strings.TrimSpace(r.Header.Get(header))
	if userID == "" {
		return Session{}, ErrNoSession
	}
	return Session{UserID: userID}, nil
}

// Anonymous reports whether the session has no user
func (s Session) Anonymous() bool {
	return s.UserID == ""
}
