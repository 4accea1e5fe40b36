package auth

import (
	"errors"
	"fmt"
)

// PollState is the state of the device token polling loop.
type PollState int

const (
	StatePending PollState = iota
	StateSuccess
	StateDenied
	StateExpired
	StateFatal
)

func (s PollState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSuccess:
		return "success"
	case StateDenied:
		return "denied"
	case StateExpired:
		return "expired"
	case StateFatal:
		return "fatal"
	default:
		return fmt.Sprintf("PollState(%d)", int(s))
	}
}

// OAuth error codes defined for the device authorization grant (RFC 8628 §3.5).
const (
	codeAuthorizationPending = "authorization_pending"
	codeSlowDown             = "slow_down"
	codeAccessDenied         = "access_denied"
	codeExpiredToken         = "expired_token"
)

var (
	// ErrMissingClientID is returned before any network call when no client ID is set.
	ErrMissingClientID = errors.New("client ID is required")
	// ErrAccessDenied means the user declined the authorization request.
	ErrAccessDenied = errors.New("access denied")
	// ErrDeviceCodeExpired means the device code expired before the user approved it.
	ErrDeviceCodeExpired = errors.New("device code expired")
	// ErrTransport marks failures to reach the authorization server at all.
	ErrTransport = errors.New("cannot reach authorization server")
	// ErrProtocol marks responses that violate or fall outside the device grant contract.
	ErrProtocol = errors.New("authorization server error")
)

// FlowError is the terminal failure of a device authorization attempt.
// Use errors.Is with the sentinel errors above to classify it.
type FlowError struct {
	State       PollState
	Code        string // OAuth error code, empty for transport failures
	Description string // server-provided error_description, passed through verbatim
	Err         error
}

func (e *FlowError) Error() string {
	switch {
	case e.State == StateDenied:
		return "access denied: the authorization request was declined"
	case e.State == StateExpired:
		return "device code expired: run 'eclipse login' again to restart authentication"
	case e.Code != "" && e.Description != "":
		return fmt.Sprintf("%v: %s: %s", ErrProtocol, e.Code, e.Description)
	case e.Code != "":
		return fmt.Sprintf("%v: %s", ErrProtocol, e.Code)
	default:
		return e.Err.Error()
	}
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

func transportError(op string, err error) *FlowError {
	return &FlowError{State: StateFatal, Err: fmt.Errorf("%w: %s: %w", ErrTransport, op, err)}
}

func protocolError(code, description string) *FlowError {
	return &FlowError{State: StateFatal, Code: code, Description: description, Err: ErrProtocol}
}

func malformedError(format string, args ...any) *FlowError {
	return &FlowError{State: StateFatal, Err: fmt.Errorf("%w: "+format, append([]any{ErrProtocol}, args...)...)}
}
