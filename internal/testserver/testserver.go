// Package testserver implements an in-memory stand-in for the Latch
// authentication service, speaking the same wire protocol as the hosted
// deployment: the v1/auth routes, JSON error bodies with errorCode /
// errorDescription / message, and refresh tokens delivered through the DSR
// cookie. It exists for SDK tests and carries none of the real service's
// rate limiting or persistence.
package testserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// RefreshCookieName mirrors the protocol constant used by the service.
const RefreshCookieName = "DSR"

// Server is an in-memory Latch service.
type Server struct {
	projectID string
	mux       *http.ServeMux
	store     *store
	signer    *signer
}

// New creates a test server for the given project ID.
func New(projectID string) (*Server, error) {
	sg, err := newSigner()
	if err != nil {
		return nil, fmt.Errorf("testserver: %w", err)
	}

	s := &Server{
		projectID: projectID,
		mux:       http.NewServeMux(),
		store:     newStore(),
		signer:    sg,
	}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler implementing the wire protocol.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) routes() {
	// OTP
	s.mux.HandleFunc("POST /v1/auth/otp/signup/{method}", s.handleOTPSend(true))
	s.mux.HandleFunc("POST /v1/auth/otp/signin/{method}", s.handleOTPSend(false))
	s.mux.HandleFunc("POST /v1/auth/otp/signup-in/{method}", s.handleOTPSend(true))
	s.mux.HandleFunc("POST /v1/auth/otp/verify/{method}", s.handleOTPVerify)
	s.mux.HandleFunc("POST /v1/auth/otp/update/email", s.requireRefresh(s.handleOTPUpdateEmail))
	s.mux.HandleFunc("POST /v1/auth/otp/update/phone", s.requireRefresh(s.handleOTPUpdatePhone))

	// Magic link
	s.mux.HandleFunc("POST /v1/auth/magiclink/signup/{method}", s.handleMagicLinkSend(true))
	s.mux.HandleFunc("POST /v1/auth/magiclink/signin/{method}", s.handleMagicLinkSend(false))
	s.mux.HandleFunc("POST /v1/auth/magiclink/signup-in/{method}", s.handleMagicLinkSend(true))
	s.mux.HandleFunc("POST /v1/auth/magiclink/verify", s.handleMagicLinkVerify)
	s.mux.HandleFunc("POST /v1/auth/magiclink/update/email", s.requireRefresh(s.handleMagicLinkUpdateEmail))
	s.mux.HandleFunc("POST /v1/auth/magiclink/update/phone", s.requireRefresh(s.handleMagicLinkUpdatePhone))

	// Enchanted link
	s.mux.HandleFunc("POST /v1/auth/enchantedlink/signup/email", s.handleEnchantedLinkSend(true))
	s.mux.HandleFunc("POST /v1/auth/enchantedlink/signin/email", s.handleEnchantedLinkSend(false))
	s.mux.HandleFunc("POST /v1/auth/enchantedlink/verify", s.handleEnchantedLinkVerify)
	s.mux.HandleFunc("POST /v1/auth/enchantedlink/pending-session", s.handlePendingSession)
	s.mux.HandleFunc("POST /v1/auth/enchantedlink/update/email", s.requireRefresh(s.handleEnchantedLinkUpdateEmail))

	// TOTP
	s.mux.HandleFunc("POST /v1/auth/totp/signup", s.handleTOTPSignUp)
	s.mux.HandleFunc("POST /v1/auth/totp/update", s.requireRefresh(s.handleTOTPUpdate))
	s.mux.HandleFunc("POST /v1/auth/totp/verify", s.handleTOTPVerify)

	// OAuth / SSO
	s.mux.HandleFunc("POST /v1/auth/oauth/authorize", s.handleOAuthAuthorize)
	s.mux.HandleFunc("POST /v1/auth/oauth/exchange", s.handleCodeExchange)
	s.mux.HandleFunc("POST /v1/auth/sso/authorize", s.handleSSOAuthorize)
	s.mux.HandleFunc("POST /v1/auth/sso/exchange", s.handleCodeExchange)

	// Password
	s.mux.HandleFunc("POST /v1/auth/password/signup", s.handlePasswordSignUp)
	s.mux.HandleFunc("POST /v1/auth/password/signin", s.handlePasswordSignIn)
	s.mux.HandleFunc("POST /v1/auth/password/update", s.requireRefresh(s.handlePasswordUpdate))
	s.mux.HandleFunc("POST /v1/auth/password/replace", s.handlePasswordReplace)
	s.mux.HandleFunc("POST /v1/auth/password/reset", s.handlePasswordReset)

	// Access keys and sessions
	s.mux.HandleFunc("POST /v1/auth/accesskey/exchange", s.handleAccessKeyExchange)
	s.mux.HandleFunc("GET /v1/auth/me", s.requireRefresh(s.handleMe))
	s.mux.HandleFunc("POST /v1/auth/refresh", s.requireRefresh(s.handleRefresh))
	s.mux.HandleFunc("POST /v1/auth/logout", s.requireRefresh(s.handleLogout))
}

// ============================================================================
// Wire Helpers
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, map[string]string{
		"errorCode":        code,
		"errorDescription": description,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed request body")
		return false
	}
	return true
}

// bearerSecret parses "Bearer <projectID>:<secret>" and validates the
// project ID, returning the secret.
func (s *Server) bearerSecret(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	project, secret, ok := strings.Cut(token, ":")
	if !ok || project != s.projectID || secret == "" {
		return "", false
	}
	return secret, true
}

// requireRefresh wraps handlers that authorize with a refresh token and
// hands them the resolved user.
func (s *Server) requireRefresh(next func(http.ResponseWriter, *http.Request, *user)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		secret, ok := s.bearerSecret(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing_arguments", "missing or malformed authorization")
			return
		}
		u := s.store.userByRefreshToken(secret)
		if u == nil {
			writeError(w, http.StatusUnauthorized, "invalid_arguments", "unknown refresh token")
			return
		}
		next(w, r, u)
	}
}

// issueSession writes a session-bearing success response for the user. When
// viaCookie is set the refresh token travels in the DSR cookie, otherwise it
// is returned inline in the body (the access key exchange shape).
func (s *Server) issueSession(w http.ResponseWriter, u *user, viaCookie bool) {
	sessionJWT, err := s.signer.sessionJWT(u.id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to sign session token")
		return
	}
	refresh := s.store.issueRefreshToken(u)

	firstSeen := !u.seen
	u.seen = true

	body := map[string]any{
		"sessionJwt": sessionJWT,
		"user":       u.info(),
		"firstSeen":  firstSeen,
	}
	if viaCookie {
		http.SetCookie(w, &http.Cookie{
			Name:     RefreshCookieName,
			Value:    refresh,
			Path:     "/",
			HttpOnly: true,
		})
	} else {
		body["refreshJwt"] = refresh
	}
	writeJSON(w, http.StatusOK, body)
}
