package client

import (
	"context"
	"errors"
	"strings"
)

// ErrNoSession is returned when the session provider has no token
var ErrNoSession = errors.New("no active session")

// TokenSource is the single session provider every call asks for its bearer token
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticToken always returns the same token
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	tok := strings.TrimSpace(string(s))
	if tok == "" {
		return "", ErrNoSession
	}
	return tok, nil
}
