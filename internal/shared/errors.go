package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("missing required configuration")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors
	ErrAuthFailed     = fmt.Errorf("authentication failed")
	ErrStateMismatch  = fmt.Errorf("oauth state mismatch")
	ErrNoRefreshToken = fmt.Errorf("no refresh token received")
	ErrTimeout        = fmt.Errorf("operation timed out")

	// Remote API errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrFetchFailed        = fmt.Errorf("track fetch failed")
	ErrWriteFailed        = fmt.Errorf("record write failed")
	ErrPartialSync        = fmt.Errorf("sync finished with failed records")

	// Input validation errors
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
