package testserver

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"
)

// ============================================================================
// OTP
// ============================================================================

type sendRequest struct {
	LoginID     string `json:"loginId"`
	RedirectURL string `json:"redirectUrl"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

func randomOTPCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// maskLoginID hides most of an address the way the hosted service does,
// keeping just enough for the user to recognise it.
func maskLoginID(loginID string) string {
	if local, domain, ok := strings.Cut(loginID, "@"); ok {
		if len(local) <= 1 {
			return "*@" + domain
		}
		return local[:1] + strings.Repeat("*", len(local)-1) + "@" + domain
	}
	if len(loginID) <= 4 {
		return strings.Repeat("*", len(loginID))
	}
	return strings.Repeat("*", len(loginID)-4) + loginID[len(loginID)-4:]
}

func maskedResponse(method, loginID string) map[string]string {
	if method == "email" {
		return map[string]string{"maskedEmail": maskLoginID(loginID)}
	}
	return map[string]string{"maskedPhone": maskLoginID(loginID)}
}

// handleOTPSend serves the three initiation variants; create selects whether
// an unknown login ID is provisioned (signup, signup-in) or rejected (signin).
func (s *Server) handleOTPSend(create bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.LoginID == "" {
			writeError(w, http.StatusBadRequest, "missing_arguments", "loginId is required")
			return
		}

		u := s.store.upsertUser(req.LoginID, create)
		if u == nil {
			writeError(w, http.StatusBadRequest, "invalid_arguments", "unknown user")
			return
		}
		method := r.PathValue("method")
		s.setContact(u, method, req.LoginID)
		s.stashOTP(req.LoginID)
		writeJSON(w, http.StatusOK, maskedResponse(method, req.LoginID))
	}
}

func (s *Server) setContact(u *user, method, address string) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	switch method {
	case "sms", "whatsapp":
		u.phone = address
	default:
		u.email = address
	}
}

func (s *Server) stashOTP(loginID string) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.otps[loginID] = &pendingOTP{code: randomOTPCode()}
}

func (s *Server) handleOTPVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LoginID string `json:"loginId"`
		Code    string `json:"code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	s.store.mu.Lock()
	pending := s.store.otps[req.LoginID]
	if pending == nil {
		s.store.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "invalid_otp_code", "no code pending for this user")
		return
	}
	pending.attempts++
	if pending.attempts > maxOTPAttempts {
		delete(s.store.otps, req.LoginID)
		s.store.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "too_many_otp_attempts", "too many failed attempts")
		return
	}
	if pending.code != req.Code {
		s.store.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "invalid_otp_code", "wrong code")
		return
	}
	delete(s.store.otps, req.LoginID)
	u := s.store.users[req.LoginID]
	s.markVerified(u, r.PathValue("method"))
	s.store.mu.Unlock()

	s.issueSession(w, u, true)
}

// markVerified flags the contact channel that just proved ownership. Caller
// holds the store lock.
func (s *Server) markVerified(u *user, method string) {
	switch method {
	case "sms", "whatsapp":
		u.verifiedPhone = true
	default:
		u.verifiedEmail = true
	}
}

func (s *Server) handleOTPUpdateEmail(w http.ResponseWriter, r *http.Request, u *user) {
	s.handleContactUpdate(w, r, u, "email", true)
}

func (s *Server) handleOTPUpdatePhone(w http.ResponseWriter, r *http.Request, u *user) {
	s.handleContactUpdate(w, r, u, "sms", true)
}

// handleContactUpdate stages a new address for a signed-in user and sends
// either an OTP code or a magic link token to prove ownership.
func (s *Server) handleContactUpdate(w http.ResponseWriter, r *http.Request, u *user, method string, viaOTP bool) {
	var req sendRequest
	if !decodeBody(w, r, &req) {
		return
	}
	address := req.Email
	if method != "email" {
		address = req.Phone
	}
	if address == "" {
		writeError(w, http.StatusBadRequest, "missing_arguments", "the new address is required")
		return
	}

	s.setContact(u, method, address)
	if viaOTP {
		s.stashOTP(u.loginID)
	} else {
		s.stashMagicToken(u.loginID)
	}
	writeJSON(w, http.StatusOK, maskedResponse(method, address))
}

// ============================================================================
// Magic Link
// ============================================================================

func (s *Server) stashMagicToken(loginID string) string {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	token := ulid.Make().String()
	s.store.magicTokens[token] = loginID
	return token
}

func (s *Server) handleMagicLinkSend(create bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.LoginID == "" {
			writeError(w, http.StatusBadRequest, "missing_arguments", "loginId is required")
			return
		}

		u := s.store.upsertUser(req.LoginID, create)
		if u == nil {
			writeError(w, http.StatusBadRequest, "invalid_arguments", "unknown user")
			return
		}
		method := r.PathValue("method")
		s.setContact(u, method, req.LoginID)
		s.stashMagicToken(req.LoginID)
		writeJSON(w, http.StatusOK, maskedResponse(method, req.LoginID))
	}
}

func (s *Server) handleMagicLinkVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	s.store.mu.Lock()
	loginID, ok := s.store.magicTokens[req.Token]
	if !ok {
		s.store.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "link_expired", "unknown or expired token")
		return
	}
	delete(s.store.magicTokens, req.Token)
	u := s.store.users[loginID]
	u.verifiedEmail = true
	s.store.mu.Unlock()

	s.issueSession(w, u, true)
}

func (s *Server) handleMagicLinkUpdateEmail(w http.ResponseWriter, r *http.Request, u *user) {
	s.handleContactUpdate(w, r, u, "email", false)
}

func (s *Server) handleMagicLinkUpdatePhone(w http.ResponseWriter, r *http.Request, u *user) {
	s.handleContactUpdate(w, r, u, "sms", false)
}

// ============================================================================
// Enchanted Link
// ============================================================================

func (s *Server) handleEnchantedLinkSend(create bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.LoginID == "" {
			writeError(w, http.StatusBadRequest, "missing_arguments", "loginId is required")
			return
		}

		u := s.store.upsertUser(req.LoginID, create)
		if u == nil {
			writeError(w, http.StatusBadRequest, "invalid_arguments", "unknown user")
			return
		}
		s.setContact(u, "email", req.LoginID)

		s.store.mu.Lock()
		pendingRef := ulid.Make().String()
		link := &pendingLink{loginID: req.LoginID, token: ulid.Make().String()}
		s.store.links[pendingRef] = link
		s.store.mu.Unlock()

		// linkId tells the user which of the emailed candidate links to
		// click. Derived from the token so it stays stable per attempt.
		writeJSON(w, http.StatusOK, map[string]string{
			"pendingRef":  pendingRef,
			"linkId":      string('1' + link.token[len(link.token)-1]%3),
			"maskedEmail": maskLoginID(req.LoginID),
		})
	}
}

// handleEnchantedLinkVerify is the endpoint the emailed link points at. It
// confirms the pending authentication but returns no session; the waiting
// device collects that from pending-session.
func (s *Server) handleEnchantedLinkVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for _, link := range s.store.links {
		if link.token == req.Token {
			link.confirmed = true
			s.store.users[link.loginID].verifiedEmail = true
			writeJSON(w, http.StatusOK, map[string]string{})
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "link_expired", "unknown or expired token")
}

func (s *Server) handlePendingSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PendingRef string `json:"pendingRef"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	s.store.mu.Lock()
	link := s.store.links[req.PendingRef]
	if link == nil {
		s.store.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "link_expired", "unknown pending reference")
		return
	}
	if !link.confirmed {
		s.store.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "link_pending", "the link has not been confirmed yet")
		return
	}
	delete(s.store.links, req.PendingRef)
	u := s.store.users[link.loginID]
	s.store.mu.Unlock()

	s.issueSession(w, u, true)
}

func (s *Server) handleEnchantedLinkUpdateEmail(w http.ResponseWriter, r *http.Request, u *user) {
	var req sendRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "missing_arguments", "email is required")
		return
	}

	s.setContact(u, "email", req.Email)

	s.store.mu.Lock()
	pendingRef := ulid.Make().String()
	link := &pendingLink{loginID: u.loginID, token: ulid.Make().String()}
	s.store.links[pendingRef] = link
	s.store.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{
		"pendingRef":  pendingRef,
		"linkId":      string('1' + link.token[len(link.token)-1]%3),
		"maskedEmail": maskLoginID(req.Email),
	})
}
