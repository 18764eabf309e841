package llm

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ClientError represents an error from an upstream provider.
type ClientError struct {
	Type       ErrorType
	StatusCode int
	Message    string
	Cause      error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes provider errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeRateLimited
	ErrTypeAuth
	ErrTypeBadRequest
	ErrTypeUpstream
	ErrTypeInvalidResponse
)

func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeRateLimited:
		return "rate_limited"
	case ErrTypeAuth:
		return "auth"
	case ErrTypeBadRequest:
		return "bad_request"
	case ErrTypeUpstream:
		return "upstream"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// IsRateLimited reports whether err is the provider telling us to slow down.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClientError
	if errors.As(err, &ce) && ce.Type == ErrTypeRateLimited {
		return true
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return true
	}
	if st, ok := status.FromError(err); ok && st.Code() == codes.ResourceExhausted {
		return true
	}
	return false
}

// errorTypeForStatus maps an HTTP status from a provider to an ErrorType.
func errorTypeForStatus(code int) ErrorType {
	switch {
	case code == http.StatusTooManyRequests:
		return ErrTypeRateLimited
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrTypeAuth
	case code >= 400 && code < 500:
		return ErrTypeBadRequest
	case code >= 500:
		return ErrTypeUpstream
	default:
		return ErrTypeInvalidResponse
	}
}

// classifyGoogleError maps errors from the Gemini SDK, which may arrive as
// REST (googleapi) or gRPC status errors depending on the transport.
func classifyGoogleError(err error) ErrorType {
	if IsRateLimited(err) {
		return ErrTypeRateLimited
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTypeTimeout
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return errorTypeForStatus(gerr.Code)
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unauthenticated, codes.PermissionDenied:
			return ErrTypeAuth
		case codes.InvalidArgument, codes.NotFound, codes.FailedPrecondition:
			return ErrTypeBadRequest
		case codes.DeadlineExceeded:
			return ErrTypeTimeout
		case codes.Unavailable, codes.Internal:
			return ErrTypeUpstream
		}
	}
	return ErrTypeUnknown
}
