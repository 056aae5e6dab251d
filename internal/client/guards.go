package client

import "errors"

var (
	ErrLoginRequired   = errors.New("not logged in: run `jobdash login` first")
	ErrAlreadyLoggedIn = errors.New("already logged in: run `jobdash logout` first")
)

type Authenticator interface {
	Authenticated() bool
}

// RequireAuth lets only logged-in sessions through.
func RequireAuth(a Authenticator) error {
	if !a.Authenticated() {
		return ErrLoginRequired
	}
	return nil
}

// GuestOnly lets only logged-out sessions through.
func GuestOnly(a Authenticator) error {
	if a.Authenticated() {
		return ErrAlreadyLoggedIn
	}
	return nil
}
