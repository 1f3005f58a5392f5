package latchsdk

import "context"

// AccessKey exchanges long-lived machine access keys for short-lived session
// tokens. Unlike user flows, the refresh credential (when the project issues
// one) arrives inline in the body, never via cookie.
type AccessKey interface {
	// Exchange authenticates with an access key and returns a session.
	Exchange(ctx context.Context, accessKey string) (*AuthenticationResult, error)
}

type accessKeyFlow struct {
	client *Client
}

func (f *accessKeyFlow) Exchange(ctx context.Context, accessKey string) (*AuthenticationResult, error) {
	if accessKey == "" {
		return nil, ErrMissingAccessKey
	}
	// The access key itself is the exchanged secret in the Authorization
	// header; the body is empty.
	return f.client.sessionResult(ctx, flowAccessKey, opExchange, "", accessKey, nil)
}
