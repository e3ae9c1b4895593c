package client

import "errors"

var (
	ErrClientNotFound = errors.New("client not found")
	ErrEmailExists    = errors.New("a client with that email already exists")
	ErrNameRequired   = errors.New("client name is required")
)
