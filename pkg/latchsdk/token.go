package latchsdk

import (
	"net/http"
)

// RefreshCookieName is the cookie the service uses to deliver refresh tokens
// on session-bearing responses. The name is a fixed protocol constant.
const RefreshCookieName = "DSR"

// refreshTokenFromResponse extracts the refresh token from the response's
// Set-Cookie headers, or returns "" when no refresh cookie is present. The
// server may set any number of other cookies; only the one named
// RefreshCookieName is considered.
//
// This must only be called on success responses that are expected to carry a
// session (sign-in/up, verify, refresh, exchange); the call sites enforce
// that by going through sessionResult.
func refreshTokenFromResponse(res *Response) string {
	if res == nil || res.Header == nil {
		return ""
	}
	// net/http's cookie parsing handles multiple Set-Cookie headers and
	// attribute noise (Path, HttpOnly, ...) for us.
	for _, cookie := range (&http.Response{Header: res.Header}).Cookies() {
		if cookie.Name == RefreshCookieName && cookie.Value != "" {
			return cookie.Value
		}
	}
	return ""
}

// assembleAuthenticationResult merges a decoded session body with the
// cookie-carried refresh token into the externally visible result.
//
// Precedence: when the body supplies a refresh token inline (the access key
// exchange case) the cookie extractor is not consulted at all; the two
// sources are mutually exclusive by flow.
func assembleAuthenticationResult(body *jwtResponse, res *Response) (*AuthenticationResult, error) {
	if body.SessionJWT == "" {
		return nil, ErrTokenError.WithDescription("success response carried no session token")
	}

	refresh := body.RefreshJWT
	if refresh == "" {
		refresh = refreshTokenFromResponse(res)
	}

	return &AuthenticationResult{
		SessionToken:        body.SessionJWT,
		RefreshToken:        refresh,
		User:                body.User,
		FirstAuthentication: body.FirstSeen,
	}, nil
}
