package latchsdk

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// OAuth provides social login through the identity providers configured for
// the project. Start composes the provider redirect URL server-side; after
// the provider redirects back, Exchange turns the returned code into a
// session. The SDK does not implement the provider protocols themselves.
type OAuth interface {
	// Start returns the URL to redirect the user's browser to for the
	// given provider (e.g. "google", "github"). The redirect URL is where
	// the provider sends the user back to.
	Start(ctx context.Context, provider, redirectURL string) (string, error)

	// Exchange turns the code from a completed provider redirect into an
	// authenticated session.
	Exchange(ctx context.Context, code string) (*AuthenticationResult, error)
}

type oauthFlow struct {
	client *Client
}

type oauthStartRequest struct {
	Provider    string `json:"provider"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

type exchangeRequest struct {
	Code string `json:"code"`
}

func (f *oauthFlow) Start(ctx context.Context, provider, redirectURL string) (string, error) {
	if provider == "" {
		return "", ErrMissingArguments.WithDescription("provider is required")
	}
	var out urlResponse
	err := f.client.callJSON(ctx, flowOAuth, opStart, "", "",
		&oauthStartRequest{Provider: provider, RedirectURL: redirectURL}, &out)
	if err != nil {
		return "", err
	}
	return out.URL, nil
}

func (f *oauthFlow) Exchange(ctx context.Context, code string) (*AuthenticationResult, error) {
	if code == "" {
		return nil, ErrMissingArguments.WithDescription("code is required")
	}
	return f.client.sessionResult(ctx, flowOAuth, opExchange, "", "", &exchangeRequest{Code: code})
}

// ============================================================================
// PKCE
// ============================================================================

// PKCEChallenge holds a PKCE verifier and challenge pair for public clients
// running the code flow. The verifier stays with the caller; the challenge
// travels to the authorization endpoint.
type PKCEChallenge struct {
	// Verifier is the high-entropy random string (kept secret).
	Verifier string

	// Challenge is the base64url-encoded SHA-256 hash of the verifier.
	Challenge string

	// Method is always "S256".
	Method string
}

// GeneratePKCEChallenge creates a PKCE verifier/challenge pair per RFC 7636
// with 256 bits of entropy.
func GeneratePKCEChallenge() (*PKCEChallenge, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate PKCE verifier: %w", err)
	}
	verifier := base64.RawURLEncoding.EncodeToString(buf)

	hash := sha256.Sum256([]byte(verifier))
	return &PKCEChallenge{
		Verifier:  verifier,
		Challenge: base64.RawURLEncoding.EncodeToString(hash[:]),
		Method:    "S256",
	}, nil
}
