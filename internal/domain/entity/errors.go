package entity

import "errors"

var (
	// ErrInvalidInput is returned when the use case is empty or whitespace only.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMalformedUpstreamOutput is returned when the model output is not a JSON object.
	ErrMalformedUpstreamOutput = errors.New("malformed upstream output")
	// ErrUnexpectedUpstreamShape is returned when the model JSON has the wrong key set.
	ErrUnexpectedUpstreamShape = errors.New("unexpected upstream shape")
	// ErrUpstreamFailure covers transport, auth, quota and provider errors.
	ErrUpstreamFailure = errors.New("upstream failure")
)
