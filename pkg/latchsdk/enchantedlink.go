package latchsdk

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

const (
	// defaultPollTimeout bounds how long WaitForSession polls when the
	// caller passes no timeout.
	defaultPollTimeout = 120 * time.Second

	// defaultPollInterval is the fixed sleep between status checks.
	defaultPollInterval = time.Second
)

// EnchantedLink provides authentication with links that are confirmed
// out-of-band: the user clicks an emailed link, possibly on another device,
// while the initiating application waits for the session to materialize.
//
// An initiation call returns a PendingRef plus the LinkID the user must
// click. The application then either polls with WaitForSession or runs its
// own cadence around GetSession.
type EnchantedLink interface {
	// SignUp creates a new user and sends them an enchanted link.
	SignUp(ctx context.Context, loginID, redirectURL string, details *SignUpDetails) (*EnchantedLinkResponse, error)

	// SignIn sends an enchanted link to an existing user.
	SignIn(ctx context.Context, loginID, redirectURL string) (*EnchantedLinkResponse, error)

	// GetSession performs exactly one status check for the pending
	// reference. It returns the session once the link was confirmed, or
	// ErrLinkPending while confirmation is still outstanding.
	GetSession(ctx context.Context, pendingRef string) (*AuthenticationResult, error)

	// WaitForSession polls GetSession at a fixed interval until the link is
	// confirmed, a terminal error occurs, or the timeout elapses. A zero
	// timeout selects the 120 second default.
	//
	// Pending responses and network errors are retried until the deadline;
	// any other error aborts immediately. When the deadline passes with the
	// link still unconfirmed the result is ErrLinkExpired. Cancelling ctx
	// stops polling within one interval and returns the context's error.
	WaitForSession(ctx context.Context, pendingRef string, timeout time.Duration) (*AuthenticationResult, error)

	// UpdateEmail starts an email change confirmed via enchanted link.
	// Requires the user's refresh token.
	UpdateEmail(ctx context.Context, loginID, email, redirectURL, refreshToken string) (*EnchantedLinkResponse, error)
}

type enchantedLinkFlow struct {
	client *Client
}

type enchantedLinkRequest struct {
	LoginID     string         `json:"loginId,omitempty"`
	RedirectURL string         `json:"redirectUrl,omitempty"`
	User        *SignUpDetails `json:"user,omitempty"`
	Email       string         `json:"email,omitempty"`
}

type pendingSessionRequest struct {
	PendingRef string `json:"pendingRef"`
}

func (f *enchantedLinkFlow) SignUp(ctx context.Context, loginID, redirectURL string, details *SignUpDetails) (*EnchantedLinkResponse, error) {
	if loginID == "" {
		return nil, ErrMissingArguments.WithDescription("loginId is required")
	}
	var out EnchantedLinkResponse
	err := f.client.callJSON(ctx, flowEnchantedLink, opSignUp, "", "",
		&enchantedLinkRequest{LoginID: loginID, RedirectURL: redirectURL, User: details}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *enchantedLinkFlow) SignIn(ctx context.Context, loginID, redirectURL string) (*EnchantedLinkResponse, error) {
	if loginID == "" {
		return nil, ErrMissingArguments.WithDescription("loginId is required")
	}
	var out EnchantedLinkResponse
	err := f.client.callJSON(ctx, flowEnchantedLink, opSignIn, "", "",
		&enchantedLinkRequest{LoginID: loginID, RedirectURL: redirectURL}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (f *enchantedLinkFlow) GetSession(ctx context.Context, pendingRef string) (*AuthenticationResult, error) {
	if pendingRef == "" {
		return nil, ErrMissingArguments.WithDescription("pendingRef is required")
	}
	return f.client.sessionResult(ctx, flowEnchantedLink, opPending, "", "",
		&pendingSessionRequest{PendingRef: pendingRef})
}

func (f *enchantedLinkFlow) UpdateEmail(ctx context.Context, loginID, email, redirectURL, refreshToken string) (*EnchantedLinkResponse, error) {
	if loginID == "" || email == "" {
		return nil, ErrMissingArguments.WithDescription("loginId and email are required")
	}
	var out EnchantedLinkResponse
	err := f.client.callJSON(ctx, flowEnchantedLink, opUpdateEmail, "", refreshToken,
		&enchantedLinkRequest{LoginID: loginID, Email: email, RedirectURL: redirectURL}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Verification Polling Engine
// ============================================================================

func (f *enchantedLinkFlow) WaitForSession(ctx context.Context, pendingRef string, timeout time.Duration) (*AuthenticationResult, error) {
	if pendingRef == "" {
		return nil, ErrMissingArguments.WithDescription("pendingRef is required")
	}
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}

	// The timeout is wall-clock from the first attempt, independent of how
	// many retries fit inside it.
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// The limiter spaces attempts one interval apart and waits in a
	// context-aware way, so caller cancellation interrupts the sleep. The
	// burst of one token makes the first attempt immediate.
	interval := f.client.config.EnchantedLinkPollInterval
	limiter := rate.NewLimiter(rate.Every(interval), 1)

	for {
		if err := limiter.Wait(pollCtx); err != nil {
			return nil, pollDeadlineError(ctx)
		}

		result, err := f.GetSession(pollCtx, pendingRef)
		switch {
		case err == nil:
			return result, nil
		case ErrorMatches(err, ErrorCodeLinkPending):
			// Expected steady state while the user hasn't clicked yet.
		case ErrorMatches(err, ErrorCodeNetworkError):
			// Transient: never aborts polling before the deadline.
		default:
			// Cancellation takes priority over error classification; an
			// aborted in-flight call must not masquerade as a server error.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if pollCtx.Err() != nil {
				return nil, pollDeadlineError(ctx)
			}
			return nil, err
		}

		if pollCtx.Err() != nil {
			return nil, pollDeadlineError(ctx)
		}
	}
}

// pollDeadlineError distinguishes caller cancellation from the polling
// window running out: the former surfaces the context's own error, the
// latter the fixed expired-link error.
func pollDeadlineError(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrLinkExpired.WithDescription("the enchanted link was not confirmed in time")
}
