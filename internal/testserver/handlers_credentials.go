package testserver

import (
	"encoding/base64"
	"net/http"
	"net/url"

	"github.com/oklog/ulid/v2"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

// ============================================================================
// TOTP
// ============================================================================

func (s *Server) handleTOTPSignUp(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.LoginID == "" {
		writeError(w, http.StatusBadRequest, "missing_arguments", "loginId is required")
		return
	}
	u := s.store.upsertUser(req.LoginID, true)
	s.writeTOTPSeed(w, u)
}

func (s *Server) handleTOTPUpdate(w http.ResponseWriter, r *http.Request, u *user) {
	s.writeTOTPSeed(w, u)
}

func (s *Server) writeTOTPSeed(w http.ResponseWriter, u *user) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "Latch",
		AccountName: u.loginID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to generate totp seed")
		return
	}

	s.store.mu.Lock()
	u.totpSecret = key.Secret()
	s.store.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{
		"provisioningUrl": key.URL(),
		"image":           base64.StdEncoding.EncodeToString([]byte(key.URL())),
		"key":             key.Secret(),
	})
}

func (s *Server) handleTOTPVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LoginID string `json:"loginId"`
		Code    string `json:"code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	u := s.store.upsertUser(req.LoginID, false)
	if u == nil || u.totpSecret == "" {
		writeError(w, http.StatusUnauthorized, "invalid_otp_code", "no authenticator registered")
		return
	}
	if !totp.Validate(req.Code, u.totpSecret) {
		writeError(w, http.StatusUnauthorized, "invalid_otp_code", "wrong code")
		return
	}
	s.issueSession(w, u, true)
}

// ============================================================================
// OAuth / SSO
// ============================================================================

func (s *Server) handleOAuthAuthorize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider    string `json:"provider"`
		RedirectURL string `json:"redirectUrl"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Provider == "" {
		writeError(w, http.StatusBadRequest, "missing_arguments", "provider is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"url": "https://idp.example.com/oauth/authorize?provider=" + url.QueryEscape(req.Provider) +
			"&state=" + ulid.Make().String(),
	})
}

func (s *Server) handleSSOAuthorize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tenant      string `json:"tenant"`
		RedirectURL string `json:"redirectUrl"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Tenant == "" {
		writeError(w, http.StatusBadRequest, "missing_arguments", "tenant is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"url": "https://sso.example.com/saml/" + url.PathEscape(req.Tenant) +
			"?state=" + ulid.Make().String(),
	})
}

// handleCodeExchange serves both oauth/exchange and sso/exchange; the code
// carries no memory of which authorize minted it.
func (s *Server) handleCodeExchange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "missing_arguments", "code is required")
		return
	}

	s.store.mu.Lock()
	loginID, ok := s.store.exchangeCodes[req.Code]
	if ok {
		delete(s.store.exchangeCodes, req.Code)
	}
	s.store.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_arguments", "unknown exchange code")
		return
	}

	u := s.store.upsertUser(loginID, true)
	s.issueSession(w, u, true)
}

// ============================================================================
// Password
// ============================================================================

func (s *Server) handlePasswordSignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LoginID  string `json:"loginId"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.LoginID == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_arguments", "loginId and password are required")
		return
	}

	u := s.store.upsertUser(req.LoginID, true)
	if !s.setPassword(w, u, req.Password) {
		return
	}
	s.issueSession(w, u, true)
}

func (s *Server) handlePasswordSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LoginID  string `json:"loginId"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	u := s.store.upsertUser(req.LoginID, false)
	if u == nil || u.passwordHash == nil {
		writeError(w, http.StatusUnauthorized, "invalid_arguments", "unknown user or password not set")
		return
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid_arguments", "wrong password")
		return
	}
	s.issueSession(w, u, true)
}

func (s *Server) handlePasswordUpdate(w http.ResponseWriter, r *http.Request, u *user) {
	var req struct {
		LoginID  string `json:"loginId"`
		Password string `json:"newPassword"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing_arguments", "newPassword is required")
		return
	}
	if !s.setPassword(w, u, req.Password) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{})
}

func (s *Server) handlePasswordReplace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LoginID     string `json:"loginId"`
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	u := s.store.upsertUser(req.LoginID, false)
	if u == nil || u.passwordHash == nil {
		writeError(w, http.StatusUnauthorized, "invalid_arguments", "unknown user or password not set")
		return
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.OldPassword)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid_arguments", "wrong password")
		return
	}
	if !s.setPassword(w, u, req.NewPassword) {
		return
	}
	s.issueSession(w, u, true)
}

func (s *Server) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// Whether or not the user exists, respond identically so the endpoint
	// cannot be used to probe for accounts.
	if s.store.upsertUser(req.LoginID, false) != nil {
		s.stashMagicToken(req.LoginID)
	}
	writeJSON(w, http.StatusOK, map[string]string{})
}

func (s *Server) setPassword(w http.ResponseWriter, u *user, password string) bool {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to hash password")
		return false
	}
	s.store.mu.Lock()
	u.passwordHash = hash
	s.store.mu.Unlock()
	return true
}

// ============================================================================
// Access Keys and Sessions
// ============================================================================

func (s *Server) handleAccessKeyExchange(w http.ResponseWriter, r *http.Request) {
	key, ok := s.bearerSecret(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_access_key", "missing or malformed authorization")
		return
	}

	s.store.mu.Lock()
	loginID, ok := s.store.accessKeys[key]
	s.store.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_access_key", "unknown access key")
		return
	}

	u := s.store.upsertUser(loginID, true)
	s.issueSession(w, u, false)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, u *user) {
	writeJSON(w, http.StatusOK, u.info())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request, u *user) {
	sessionJWT, err := s.signer.sessionJWT(u.id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", "failed to sign session token")
		return
	}
	// The refresh token itself is not rotated, so no cookie and no inline
	// refreshJwt in the response.
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionJwt": sessionJWT,
		"user":       u.info(),
		"firstSeen":  false,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, u *user) {
	secret, _ := s.bearerSecret(r)
	s.store.revokeRefreshToken(secret)
	writeJSON(w, http.StatusOK, map[string]string{})
}
