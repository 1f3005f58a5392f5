package latchsdk

import "context"

// TOTP provides authentication with authenticator app codes. SignUp and
// UpdateKey provision a seed; Verify exchanges a current code for a session.
type TOTP interface {
	// SignUp creates a new user and provisions a TOTP seed for them.
	SignUp(ctx context.Context, loginID string, details *SignUpDetails) (*TOTPResponse, error)

	// UpdateKey provisions a fresh TOTP seed for an existing user,
	// invalidating the previous one. Requires the user's refresh token.
	UpdateKey(ctx context.Context, loginID, refreshToken string) (*TOTPResponse, error)

	// Verify exchanges a current authenticator code for a session.
	Verify(ctx context.Context, loginID, code string) (*AuthenticationResult, error)
}

type totpFlow struct {
	client *Client
}

type totpRequest struct {
	LoginID string         `json:"loginId"`
	Code    string         `json:"code,omitempty"`
	User    *SignUpDetails `json:"user,omitempty"`
}

func (f *totpFlow) SignUp(ctx context.Context, loginID string, details *SignUpDetails) (*TOTPResponse, error) {
	if loginID == "" {
		return nil, ErrMissingArguments.WithDescription("loginId is required")
	}
	var out TOTPResponse
	err := f.client.callJSON(ctx, flowTOTP, opSignUp, "", "",
		&totpRequest{LoginID: loginID, User: details}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *totpFlow) UpdateKey(ctx context.Context, loginID, refreshToken string) (*TOTPResponse, error) {
	if loginID == "" {
		return nil, ErrMissingArguments.WithDescription("loginId is required")
	}
	var out TOTPResponse
	err := f.client.callJSON(ctx, flowTOTP, opUpdateKey, "", refreshToken,
		&totpRequest{LoginID: loginID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *totpFlow) Verify(ctx context.Context, loginID, code string) (*AuthenticationResult, error) {
	if loginID == "" || code == "" {
		return nil, ErrMissingArguments.WithDescription("loginId and code are required")
	}
	return f.client.sessionResult(ctx, flowTOTP, opVerify, "", "",
		&totpRequest{LoginID: loginID, Code: code})
}
