package signin

import (
	"fmt"

	"github.com/sakif/mentorchat/internal/auth"
)

// ResultCode is the overall outcome of a sign-in attempt. The values match
// the activity result codes hosted sign-in screens traditionally report.
type ResultCode int

const (
	ResultOK       ResultCode = -1
	ResultCanceled ResultCode = 0
)

func (c ResultCode) String() string {
	switch c {
	case ResultOK:
		return "ok"
	case ResultCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("result(%d)", int(c))
	}
}

// ErrorCode classifies why a canceled attempt failed.
type ErrorCode int

const (
	ErrorUnknown   ErrorCode = 0
	ErrorNoNetwork ErrorCode = 1
	ErrorDeveloper ErrorCode = 3
	ErrorProvider  ErrorCode = 4
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorUnknown:
		return "unknown"
	case ErrorNoNetwork:
		return "no_network"
	case ErrorDeveloper:
		return "developer_error"
	case ErrorProvider:
		return "provider_error"
	default:
		return fmt.Sprintf("error(%d)", int(c))
	}
}

// Error is the optional payload of a failed attempt.
type Error struct {
	Code ErrorCode
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "signin: " + e.Code.String()
	}
	return fmt.Sprintf("signin: %s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result is delivered exactly once per Complete call.
//
//   - Code == ResultOK: Identity is set and Err is nil.
//   - Code == ResultCanceled with Err == nil: the user backed out.
//   - Code == ResultCanceled with Err set: the attempt failed.
type Result struct {
	Code     ResultCode
	Err      *Error
	Identity *auth.Identity
}

// OK reports whether the user is now signed in.
func (r Result) OK() bool {
	return r.Code == ResultOK && r.Identity != nil
}
