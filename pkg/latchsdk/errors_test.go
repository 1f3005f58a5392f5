package latchsdk

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorEquality(t *testing.T) {
	t.Parallel()

	t.Run("matches by code only", func(t *testing.T) {
		t.Parallel()

		a := NewError(ErrorCodeInvalidOTPCode, "one description")
		b := NewError(ErrorCodeInvalidOTPCode, "a completely different description")

		require.ErrorIs(t, a, b)
		require.ErrorIs(t, b, a)
	})

	t.Run("different codes are not equal", func(t *testing.T) {
		t.Parallel()
		require.NotErrorIs(t, ErrInvalidOTPCode, ErrTooManyOTPAttempts)
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		t.Parallel()

		wrapped := fmt.Errorf("verify failed: %w", ErrInvalidOTPCode.WithMessage("attempt 3"))
		require.ErrorIs(t, wrapped, ErrInvalidOTPCode)
	})

	t.Run("non-Error targets never match", func(t *testing.T) {
		t.Parallel()
		require.NotErrorIs(t, ErrServerError, errors.New("server_error"))
	})
}

func TestErrorText(t *testing.T) {
	t.Parallel()

	t.Run("prefers description", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "the code is invalid", ErrInvalidOTPCode.Error())
	})

	t.Run("falls back to cause", func(t *testing.T) {
		t.Parallel()

		e := &Error{Code: "x", cause: errors.New("connection refused")}
		require.Equal(t, "connection refused", e.Error())
	})

	t.Run("falls back to code", func(t *testing.T) {
		t.Parallel()

		e := &Error{Code: "mystery_code"}
		require.Equal(t, "error [mystery_code]", e.Error())
	})

	t.Run("appends message", func(t *testing.T) {
		t.Parallel()

		e := ErrInvalidOTPCode.WithMessage("2 attempts left")
		require.Equal(t, "the code is invalid (2 attempts left)", e.Error())
	})
}

func TestErrorImmutability(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	derived := ErrNetworkError.
		WithDescription("changed").
		WithMessage("extra").
		WithCause(cause)

	require.Equal(t, "the request failed with a network error", ErrNetworkError.Description)
	require.Empty(t, ErrNetworkError.Message)
	require.NoError(t, ErrNetworkError.Unwrap())

	require.Equal(t, "changed", derived.Description)
	require.Equal(t, "extra", derived.Message)
	require.ErrorIs(t, derived, cause)
	require.ErrorIs(t, derived, ErrNetworkError)
}

func TestNewErrorRejectsEmptyCode(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() { NewError("", "no code") })
}

func TestErrorMatches(t *testing.T) {
	t.Parallel()

	require.True(t, ErrorMatches(ErrLinkPending, ErrorCodeLinkPending))
	require.True(t, ErrorMatches(fmt.Errorf("outer: %w", NewError("some_newer_code", "")), "some_newer_code"))
	require.False(t, ErrorMatches(ErrLinkPending, ErrorCodeLinkExpired))
	require.False(t, ErrorMatches(nil, ErrorCodeLinkPending))
	require.False(t, ErrorMatches(errors.New("plain"), ErrorCodeLinkPending))
}

func TestClassifyResponse(t *testing.T) {
	t.Parallel()

	t.Run("structured error body", func(t *testing.T) {
		t.Parallel()

		e := classifyResponse(401, []byte(`{"errorCode":"invalid_otp_code","errorDescription":"wrong code","message":"2 attempts left"}`))
		require.ErrorIs(t, e, ErrInvalidOTPCode)
		require.Equal(t, "wrong code", e.Description)
		require.Equal(t, "2 attempts left", e.Message)
	})

	t.Run("unknown code is preserved", func(t *testing.T) {
		t.Parallel()

		e := classifyResponse(403, []byte(`{"errorCode":"brand_new_code"}`))
		require.True(t, ErrorMatches(e, "brand_new_code"))
	})

	t.Run("undecodable body", func(t *testing.T) {
		t.Parallel()

		e := classifyResponse(502, []byte("<html>bad gateway</html>"))
		require.ErrorIs(t, e, ErrDecodeError)
		require.Contains(t, e.Description, "HTTP 502")
		require.Error(t, e.Unwrap())
	})

	t.Run("json without an error code", func(t *testing.T) {
		t.Parallel()

		e := classifyResponse(500, []byte(`{"status":"down"}`))
		require.ErrorIs(t, e, ErrServerError)
		require.Contains(t, e.Message, "HTTP 500")
	})
}

func TestClassifyTransport(t *testing.T) {
	t.Parallel()

	t.Run("structured errors pass through", func(t *testing.T) {
		t.Parallel()
		require.Same(t, ErrEncodeError, classifyTransport(ErrEncodeError))
	})

	t.Run("cancellation surfaces as the context error", func(t *testing.T) {
		t.Parallel()

		urlErr := &url.Error{Op: "Post", URL: "https://example.com", Err: context.Canceled}
		require.Equal(t, context.Canceled, classifyTransport(urlErr))
	})

	t.Run("everything else is a network error", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("connection refused")
		err := classifyTransport(cause)
		require.ErrorIs(t, err, ErrNetworkError)
		require.ErrorIs(t, err, cause)
	})
}
