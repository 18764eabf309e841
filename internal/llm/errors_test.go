package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"client error rate limited", &ClientError{Type: ErrTypeRateLimited}, true},
		{"client error auth", &ClientError{Type: ErrTypeAuth}, false},
		{"wrapped client error", fmt.Errorf("open: %w", &ClientError{Type: ErrTypeRateLimited}), true},
		{"googleapi 429", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"googleapi 500", &googleapi.Error{Code: http.StatusInternalServerError}, false},
		{"grpc resource exhausted", status.Error(codes.ResourceExhausted, "quota"), true},
		{"grpc unavailable", status.Error(codes.Unavailable, "down"), false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRateLimited(tc.err); got != tc.want {
				t.Errorf("IsRateLimited(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestClassifyGoogleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"rate limited", &googleapi.Error{Code: 429}, ErrTypeRateLimited},
		{"forbidden", &googleapi.Error{Code: 403}, ErrTypeAuth},
		{"bad request", &googleapi.Error{Code: 400}, ErrTypeBadRequest},
		{"grpc unauthenticated", status.Error(codes.Unauthenticated, "no"), ErrTypeAuth},
		{"grpc unavailable", status.Error(codes.Unavailable, "down"), ErrTypeUpstream},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), ErrTypeTimeout},
		{"unknown", errors.New("boom"), ErrTypeUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyGoogleError(tc.err); got != tc.want {
				t.Errorf("classifyGoogleError(%v) = %s, want %s", tc.err, got, tc.want)
			}
		})
	}
}
