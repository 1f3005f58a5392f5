package latchsdk

import "context"

// Sessions provides maintenance operations on an established session. All
// operations authorize with the caller-supplied refresh token; the SDK does
// not store sessions across calls (that belongs to a session manager built
// on top of it).
type Sessions interface {
	// Me fetches the user behind the given refresh token.
	Me(ctx context.Context, refreshToken string) (*UserInfo, error)

	// Refresh mints a new session token from the refresh token.
	Refresh(ctx context.Context, refreshToken string) (*AuthenticationResult, error)

	// Logout invalidates the refresh token and its sessions.
	Logout(ctx context.Context, refreshToken string) error
}

type sessionsFlow struct {
	client *Client
}

func (f *sessionsFlow) Me(ctx context.Context, refreshToken string) (*UserInfo, error) {
	var out UserInfo
	if err := f.client.callJSON(ctx, flowSession, opMe, "", refreshToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *sessionsFlow) Refresh(ctx context.Context, refreshToken string) (*AuthenticationResult, error) {
	return f.client.sessionResult(ctx, flowSession, opRefresh, "", refreshToken, nil)
}

func (f *sessionsFlow) Logout(ctx context.Context, refreshToken string) error {
	return f.client.callJSON(ctx, flowSession, opLogout, "", refreshToken, nil, nil)
}
