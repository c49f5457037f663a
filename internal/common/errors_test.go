package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestUserError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewUserError("could not save the item", cause)

	if got := err.Error(); got != "could not save the item: disk full" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped cause must survive errors.Is")
	}

	var userErr *UserError
	if !errors.As(err, &userErr) {
		t.Fatal("errors.As failed to extract *UserError")
	}
	if userErr.UserMessage != "could not save the item" {
		t.Errorf("UserMessage = %q", userErr.UserMessage)
	}

	bare := &UserError{UserMessage: "nothing to sync"}
	if got := bare.Error(); got != "nothing to sync" {
		t.Errorf("Error() without cause = %q", got)
	}
}

func TestUserErrorThroughWrapping(t *testing.T) {
	// Commands wrap user errors further; the CLI still finds them.
	err := fmt.Errorf("items add: %w", NewUserError("category is required", nil))

	var userErr *UserError
	if !errors.As(err, &userErr) {
		t.Fatal("errors.As must find a UserError through fmt.Errorf wrapping")
	}
	if userErr.UserMessage != "category is required" {
		t.Errorf("UserMessage = %q", userErr.UserMessage)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"rate limit", fmt.Errorf("items: %w", ErrRemoteRateLimit), true},
		{"remote unavailable", fmt.Errorf("pull: %w", ErrRemoteUnavailable), true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"unauthorized", ErrUnauthorized, false},
		{"marked retryable", &RetryableError{Err: errors.New("flaky"), Retryable: true}, true},
		{"marked non-retryable", &RetryableError{Err: errors.New("bad request"), Retryable: false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
