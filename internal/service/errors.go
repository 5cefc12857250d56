package service

import "errors"

var (
	// ErrAuthorizationDenied: no active grant for the domain.
	ErrAuthorizationDenied = errors.New("company domain not authorized")
	// ErrConfiguration: stored access data is malformed (operator error).
	ErrConfiguration = errors.New("invalid access configuration")
	// ErrUpstream: a fatal external dependency failure (lookup timeout, open breaker).
	ErrUpstream = errors.New("upstream unavailable")
	// ErrAccessDenied: the account is not part of the caller's grant.
	ErrAccessDenied = errors.New("access denied")
	// ErrInvalidRequest: caller input could not be interpreted.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNilInput: programmer error, nil collection passed to a pure stage.
	ErrNilInput = errors.New("nil input")
)
