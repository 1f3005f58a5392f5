package testserver

import (
	"crypto/ed25519"
	"crypto/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionTTL = 10 * time.Minute

// signer mints short-lived Ed25519 session JWTs. The SDK treats them as
// opaque, but real-looking tokens keep the fixture honest for anything that
// inspects claims.
type signer struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

func newSigner() (*signer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &signer{priv: priv, pub: pub}, nil
}

func (s *signer) sessionJWT(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    "latch-testserver",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(s.priv)
}

// verifySessionJWT parses a minted session token and returns its subject.
func (s *signer) verifySessionJWT(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return s.pub, nil
	}, jwt.WithValidMethods([]string{"EdDSA"}))
	if err != nil {
		return "", err
	}
	return parsed.Claims.GetSubject()
}
