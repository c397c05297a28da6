package common

import "errors"

// ErrNotFound signals that the referenced run does not exist
var ErrNotFound = errors.New("not found")

// ErrInvalidState signals an operation that would break the baseline protection
var ErrInvalidState = errors.New("invalid state")

// ErrInvalidArgument signals a malformed or out of range request argument
var ErrInvalidArgument = errors.New("invalid argument")
