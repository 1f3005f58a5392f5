package latchsdk

import "context"

// Password provides classic password authentication for projects that have
// it enabled.
type Password interface {
	// SignUp creates a new user with the given password and signs them in.
	SignUp(ctx context.Context, loginID, password string, details *SignUpDetails) (*AuthenticationResult, error)

	// SignIn authenticates an existing user with their password.
	SignIn(ctx context.Context, loginID, password string) (*AuthenticationResult, error)

	// Update sets a new password for a signed-in user. Requires the user's
	// refresh token.
	Update(ctx context.Context, loginID, newPassword, refreshToken string) error

	// Replace changes the password by presenting the current one, for
	// users who are not signed in (e.g. an expired password).
	Replace(ctx context.Context, loginID, oldPassword, newPassword string) (*AuthenticationResult, error)

	// SendReset sends a password reset flow (magic link or OTP, per
	// project settings) to the user.
	SendReset(ctx context.Context, loginID, redirectURL string) error
}

type passwordFlow struct {
	client *Client
}

type passwordRequest struct {
	LoginID     string         `json:"loginId"`
	Password    string         `json:"password,omitempty"`
	NewPassword string         `json:"newPassword,omitempty"`
	OldPassword string         `json:"oldPassword,omitempty"`
	RedirectURL string         `json:"redirectUrl,omitempty"`
	User        *SignUpDetails `json:"user,omitempty"`
}

func (f *passwordFlow) SignUp(ctx context.Context, loginID, password string, details *SignUpDetails) (*AuthenticationResult, error) {
	if loginID == "" || password == "" {
		return nil, ErrMissingArguments.WithDescription("loginId and password are required")
	}
	return f.client.sessionResult(ctx, flowPassword, opSignUp, "", "",
		&passwordRequest{LoginID: loginID, Password: password, User: details})
}

func (f *passwordFlow) SignIn(ctx context.Context, loginID, password string) (*AuthenticationResult, error) {
	if loginID == "" || password == "" {
		return nil, ErrMissingArguments.WithDescription("loginId and password are required")
	}
	return f.client.sessionResult(ctx, flowPassword, opSignIn, "", "",
		&passwordRequest{LoginID: loginID, Password: password})
}

func (f *passwordFlow) Update(ctx context.Context, loginID, newPassword, refreshToken string) error {
	if loginID == "" || newPassword == "" {
		return ErrMissingArguments.WithDescription("loginId and newPassword are required")
	}
	return f.client.callJSON(ctx, flowPassword, opUpdate, "", refreshToken,
		&passwordRequest{LoginID: loginID, NewPassword: newPassword}, nil)
}

func (f *passwordFlow) Replace(ctx context.Context, loginID, oldPassword, newPassword string) (*AuthenticationResult, error) {
	if loginID == "" || oldPassword == "" || newPassword == "" {
		return nil, ErrMissingArguments.WithDescription("loginId, oldPassword and newPassword are required")
	}
	return f.client.sessionResult(ctx, flowPassword, opReplace, "", "",
		&passwordRequest{LoginID: loginID, OldPassword: oldPassword, NewPassword: newPassword})
}

func (f *passwordFlow) SendReset(ctx context.Context, loginID, redirectURL string) error {
	if loginID == "" {
		return ErrMissingArguments.WithDescription("loginId is required")
	}
	return f.client.callJSON(ctx, flowPassword, opSendReset, "", "",
		&passwordRequest{LoginID: loginID, RedirectURL: redirectURL}, nil)
}
