package testserver

import "github.com/oklog/ulid/v2"

// Test hooks. These stand in for the delivery channels the real service
// uses, handing tests the codes and tokens that would otherwise arrive by
// email or SMS.

// LastOTPCode returns the most recent one-time code pending for a login ID,
// or "" when none is pending.
func (s *Server) LastOTPCode(loginID string) string {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if pending := s.store.otps[loginID]; pending != nil {
		return pending.code
	}
	return ""
}

// LastMagicToken returns a pending magic link token for a login ID, or ""
// when none is pending.
func (s *Server) LastMagicToken(loginID string) string {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for token, id := range s.store.magicTokens {
		if id == loginID {
			return token
		}
	}
	return ""
}

// EnchantedLinkToken returns the clickable link token behind a pending
// reference, or "" when the reference is unknown.
func (s *Server) EnchantedLinkToken(pendingRef string) string {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if link := s.store.links[pendingRef]; link != nil {
		return link.token
	}
	return ""
}

// MintExchangeCode registers a single-use OAuth/SSO exchange code for the
// given login ID, as the identity provider callback would.
func (s *Server) MintExchangeCode(loginID string) string {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	code := "C." + ulid.Make().String()
	s.store.exchangeCodes[code] = loginID
	return code
}

// CreateAccessKey provisions a machine access key bound to a login ID.
func (s *Server) CreateAccessKey(loginID string) string {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	key := "K." + ulid.Make().String()
	s.store.accessKeys[key] = loginID
	return key
}

// VerifySession checks a session JWT against the server's signing key and
// returns the user ID it was minted for.
func (s *Server) VerifySession(token string) (string, error) {
	return s.signer.verifySessionJWT(token)
}
