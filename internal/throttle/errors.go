package throttle

import "errors"

var (
	// ErrBadRequest is returned when the remote rejects the request with a
	// non-rate-limit client error. Callers must not retry these.
	ErrBadRequest = errors.New("request rejected by remote")
	// ErrRetriesExhausted is returned when all backoff attempts and the final
	// attempt failed.
	ErrRetriesExhausted = errors.New("retry attempts exhausted")
)
