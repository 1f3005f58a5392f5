package latchsdk

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func responseWithCookies(cookies ...string) *Response {
	h := http.Header{}
	for _, c := range cookies {
		h.Add("Set-Cookie", c)
	}
	return &Response{StatusCode: http.StatusOK, Header: h}
}

func TestRefreshTokenFromResponse(t *testing.T) {
	t.Parallel()

	t.Run("extracts among unrelated cookies", func(t *testing.T) {
		t.Parallel()

		res := responseWithCookies(
			"session_hint=1; Path=/",
			"DSR=abc123; Path=/; HttpOnly; Secure",
			"tracking=xyz",
		)
		require.Equal(t, "abc123", refreshTokenFromResponse(res))
	})

	t.Run("no refresh cookie", func(t *testing.T) {
		t.Parallel()
		require.Empty(t, refreshTokenFromResponse(responseWithCookies("other=1")))
	})

	t.Run("empty cookie value", func(t *testing.T) {
		t.Parallel()
		require.Empty(t, refreshTokenFromResponse(responseWithCookies("DSR=; Path=/")))
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		require.Empty(t, refreshTokenFromResponse(nil))
	})
}

func TestAssembleAuthenticationResult(t *testing.T) {
	t.Parallel()

	t.Run("refresh token from cookie", func(t *testing.T) {
		t.Parallel()

		res := responseWithCookies("DSR=refresh-1; Path=/; HttpOnly")
		auth, err := assembleAuthenticationResult(&jwtResponse{
			SessionJWT: "session-1",
			FirstSeen:  true,
		}, res)
		require.NoError(t, err)
		require.Equal(t, "session-1", auth.SessionToken)
		require.Equal(t, "refresh-1", auth.RefreshToken)
		require.True(t, auth.FirstAuthentication)
	})

	t.Run("inline refresh token wins over cookie", func(t *testing.T) {
		t.Parallel()

		res := responseWithCookies("DSR=from-cookie; Path=/")
		auth, err := assembleAuthenticationResult(&jwtResponse{
			SessionJWT: "session-1",
			RefreshJWT: "from-body",
		}, res)
		require.NoError(t, err)
		require.Equal(t, "from-body", auth.RefreshToken)
	})

	t.Run("no refresh token at all", func(t *testing.T) {
		t.Parallel()

		auth, err := assembleAuthenticationResult(&jwtResponse{SessionJWT: "session-1"}, responseWithCookies())
		require.NoError(t, err)
		require.Empty(t, auth.RefreshToken)
	})

	t.Run("missing session token", func(t *testing.T) {
		t.Parallel()

		_, err := assembleAuthenticationResult(&jwtResponse{}, responseWithCookies("DSR=r"))
		require.ErrorIs(t, err, ErrTokenError)
	})

	t.Run("user details are carried through", func(t *testing.T) {
		t.Parallel()

		user := &UserInfo{UserID: "u1", LoginIDs: []string{"dana@example.com"}}
		auth, err := assembleAuthenticationResult(&jwtResponse{SessionJWT: "s", User: user}, responseWithCookies())
		require.NoError(t, err)
		require.Same(t, user, auth.User)
	})
}
