package latchsdk

import "context"

// SSO provides tenant single sign-on through the identity provider
// configured for the tenant. Like OAuth, the SDK only composes the redirect
// and exchanges the returned code.
type SSO interface {
	// Start returns the URL to redirect the user's browser to for the
	// tenant's configured identity provider.
	Start(ctx context.Context, tenant, redirectURL string) (string, error)

	// Exchange turns the code from a completed SSO redirect into an
	// authenticated session.
	Exchange(ctx context.Context, code string) (*AuthenticationResult, error)
}

type ssoFlow struct {
	client *Client
}

type ssoStartRequest struct {
	Tenant      string `json:"tenant"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

func (f *ssoFlow) Start(ctx context.Context, tenant, redirectURL string) (string, error) {
	if tenant == "" {
		return "", ErrMissingArguments.WithDescription("tenant is required")
	}
	var out urlResponse
	err := f.client.callJSON(ctx, flowSSO, opStart, "", "",
		&ssoStartRequest{Tenant: tenant, RedirectURL: redirectURL}, &out)
	if err != nil {
		return "", err
	}
	return out.URL, nil
}

func (f *ssoFlow) Exchange(ctx context.Context, code string) (*AuthenticationResult, error) {
	if code == "" {
		return nil, ErrMissingArguments.WithDescription("code is required")
	}
	return f.client.sessionResult(ctx, flowSSO, opExchange, "", "", &exchangeRequest{Code: code})
}
