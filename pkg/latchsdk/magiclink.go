package latchsdk

import "context"

// MagicLink provides authentication with single-use links delivered to the
// user. The link lands on the caller's application, which extracts the token
// from the URL and completes the flow with Verify.
type MagicLink interface {
	// SignUp creates a new user and sends them a magic link. The redirect
	// URL is where the link sends the user's browser; details are optional.
	SignUp(ctx context.Context, method DeliveryMethod, loginID, redirectURL string, details *SignUpDetails) (string, error)

	// SignIn sends a magic link to an existing user.
	SignIn(ctx context.Context, method DeliveryMethod, loginID, redirectURL string) (string, error)

	// SignUpOrIn sends a magic link, creating the user first if needed.
	SignUpOrIn(ctx context.Context, method DeliveryMethod, loginID, redirectURL string) (string, error)

	// Verify exchanges the token carried by a clicked link for a session.
	Verify(ctx context.Context, token string) (*AuthenticationResult, error)

	// UpdateEmail starts an email change via magic link. Requires the
	// user's refresh token.
	UpdateEmail(ctx context.Context, loginID, email, redirectURL, refreshToken string) (string, error)

	// UpdatePhone starts a phone change via magic link. Requires the
	// user's refresh token.
	UpdatePhone(ctx context.Context, method DeliveryMethod, loginID, phone, redirectURL, refreshToken string) (string, error)
}

type magicLinkFlow struct {
	client *Client
}

type magicLinkRequest struct {
	LoginID     string         `json:"loginId,omitempty"`
	RedirectURL string         `json:"redirectUrl,omitempty"`
	Token       string         `json:"token,omitempty"`
	User        *SignUpDetails `json:"user,omitempty"`
	Email       string         `json:"email,omitempty"`
	Phone       string         `json:"phone,omitempty"`
}

func (f *magicLinkFlow) SignUp(ctx context.Context, method DeliveryMethod, loginID, redirectURL string, details *SignUpDetails) (string, error) {
	if err := validateDelivery(method, loginID); err != nil {
		return "", err
	}
	var out maskedAddressResponse
	err := f.client.callJSON(ctx, flowMagicLink, opSignUp, method, "",
		&magicLinkRequest{LoginID: loginID, RedirectURL: redirectURL, User: details}, &out)
	if err != nil {
		return "", err
	}
	return out.masked(method), nil
}

func (f *magicLinkFlow) SignIn(ctx context.Context, method DeliveryMethod, loginID, redirectURL string) (string, error) {
	if err := validateDelivery(method, loginID); err != nil {
		return "", err
	}
	var out maskedAddressResponse
	err := f.client.callJSON(ctx, flowMagicLink, opSignIn, method, "",
		&magicLinkRequest{LoginID: loginID, RedirectURL: redirectURL}, &out)
	if err != nil {
		return "", err
	}
	return out.masked(method), nil
}

func (f *magicLinkFlow) SignUpOrIn(ctx context.Context, method DeliveryMethod, loginID, redirectURL string) (string, error) {
	if err := validateDelivery(method, loginID); err != nil {
		return "", err
	}
	var out maskedAddressResponse
	err := f.client.callJSON(ctx, flowMagicLink, opSignUpOrIn, method, "",
		&magicLinkRequest{LoginID: loginID, RedirectURL: redirectURL}, &out)
	if err != nil {
		return "", err
	}
	return out.masked(method), nil
}

func (f *magicLinkFlow) Verify(ctx context.Context, token string) (*AuthenticationResult, error) {
	if token == "" {
		return nil, ErrMissingArguments.WithDescription("token is required")
	}
	return f.client.sessionResult(ctx, flowMagicLink, opVerify, "", "",
		&magicLinkRequest{Token: token})
}

func (f *magicLinkFlow) UpdateEmail(ctx context.Context, loginID, email, redirectURL, refreshToken string) (string, error) {
	if loginID == "" || email == "" {
		return "", ErrMissingArguments.WithDescription("loginId and email are required")
	}
	var out maskedAddressResponse
	err := f.client.callJSON(ctx, flowMagicLink, opUpdateEmail, DeliveryMethodEmail, refreshToken,
		&magicLinkRequest{LoginID: loginID, Email: email, RedirectURL: redirectURL}, &out)
	if err != nil {
		return "", err
	}
	return out.MaskedEmail, nil
}

func (f *magicLinkFlow) UpdatePhone(ctx context.Context, method DeliveryMethod, loginID, phone, redirectURL, refreshToken string) (string, error) {
	if err := validateDelivery(method, loginID); err != nil {
		return "", err
	}
	if phone == "" {
		return "", ErrMissingArguments.WithDescription("phone is required")
	}
	var out maskedAddressResponse
	err := f.client.callJSON(ctx, flowMagicLink, opUpdatePhone, method, refreshToken,
		&magicLinkRequest{LoginID: loginID, Phone: phone, RedirectURL: redirectURL}, &out)
	if err != nil {
		return "", err
	}
	return out.MaskedPhone, nil
}
