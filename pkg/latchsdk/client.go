package latchsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// DefaultBaseURL is the hosted Latch deployment the SDK talks to unless
// Config.BaseURL overrides it.
const DefaultBaseURL = "https://api.latch.aussiebroadwan.net"

const defaultHTTPTimeout = 10 * time.Second

// Config configures a Client. ProjectID is the only required field.
type Config struct {
	// ProjectID identifies the Latch project. Required.
	ProjectID string

	// BaseURL overrides the service base URL. Default: DefaultBaseURL.
	BaseURL string

	// HTTPClient overrides the HTTP client used by the default transport.
	// Default: a client with a 10 second timeout.
	HTTPClient *http.Client

	// Transport overrides the transport entirely. When set, BaseURL and
	// HTTPClient are ignored. Intended for tests and instrumentation.
	Transport Transport

	// Logger receives debug-level request logging. Default: slog.Default().
	// Credentials are never logged.
	Logger *slog.Logger

	// EnchantedLinkPollInterval is the fixed sleep between enchanted link
	// status checks. Default: 1 second.
	EnchantedLinkPollInterval time.Duration
}

// Client is the entry point to the Latch authentication service. It is
// stateless: every call constructs its own request and produces its own
// result, so a single Client is safe for unbounded concurrent use.
//
// Flow families are exposed as separate capability interfaces (OTP,
// MagicLink, EnchantedLink, ...) composed by this one type.
type Client struct {
	config    Config
	transport Transport

	otp           *otpFlow
	magicLink     *magicLinkFlow
	enchantedLink *enchantedLinkFlow
	totp          *totpFlow
	oauth         *oauthFlow
	sso           *ssoFlow
	password      *passwordFlow
	accessKey     *accessKeyFlow
	sessions      *sessionsFlow
}

// NewClient creates a Client for the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("latchsdk: ProjectID is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.EnchantedLinkPollInterval <= 0 {
		cfg.EnchantedLinkPollInterval = defaultPollInterval
	}

	c := &Client{config: cfg}
	c.transport = cfg.Transport
	if c.transport == nil {
		c.transport = newHTTPTransport(cfg.BaseURL, cfg.HTTPClient, cfg.Logger)
	}

	c.otp = &otpFlow{client: c}
	c.magicLink = &magicLinkFlow{client: c}
	c.enchantedLink = &enchantedLinkFlow{client: c}
	c.totp = &totpFlow{client: c}
	c.oauth = &oauthFlow{client: c}
	c.sso = &ssoFlow{client: c}
	c.password = &passwordFlow{client: c}
	c.accessKey = &accessKeyFlow{client: c}
	c.sessions = &sessionsFlow{client: c}
	return c, nil
}

// OTP returns the one-time code flows.
func (c *Client) OTP() OTP { return c.otp }

// MagicLink returns the magic link flows.
func (c *Client) MagicLink() MagicLink { return c.magicLink }

// EnchantedLink returns the enchanted link flows.
func (c *Client) EnchantedLink() EnchantedLink { return c.enchantedLink }

// TOTP returns the authenticator app flows.
func (c *Client) TOTP() TOTP { return c.totp }

// OAuth returns the social login flows.
func (c *Client) OAuth() OAuth { return c.oauth }

// SSO returns the single sign-on flows.
func (c *Client) SSO() SSO { return c.sso }

// Password returns the password flows.
func (c *Client) Password() Password { return c.password }

// AccessKey returns the access key exchange.
func (c *Client) AccessKey() AccessKey { return c.accessKey }

// Sessions returns session maintenance operations.
func (c *Client) Sessions() Sessions { return c.sessions }

// ============================================================================
// Shared Call Helpers
// ============================================================================

// call resolves the route, executes it through the transport and classifies
// any failure. The secret is the refresh token or access key the route's
// auth kind requires; it is ignored for unauthenticated routes.
func (c *Client) call(ctx context.Context, flow, op string, method DeliveryMethod, secret string, body any) (*Response, error) {
	rt := mustRoute(flow, op)

	req := &Request{
		Method: rt.method,
		Path:   rt.endpoint(method),
		Body:   body,
	}
	if rt.auth != authNone {
		if secret == "" {
			return nil, ErrMissingArguments.WithDescription("a credential is required for this operation")
		}
		req.Authorization = "Bearer " + c.config.ProjectID + ":" + secret
	}

	res, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, classifyResponse(res.StatusCode, res.Body)
	}
	return res, nil
}

// callJSON executes a route and decodes the success body into out, when out
// is non-nil.
func (c *Client) callJSON(ctx context.Context, flow, op string, method DeliveryMethod, secret string, body, out any) error {
	res, err := c.call(ctx, flow, op, method, secret, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(res.Body, out); err != nil {
		return ErrDecodeError.WithCause(err)
	}
	return nil
}

// sessionResult executes a route that is expected to carry a session and
// assembles the authentication result, including refresh cookie extraction.
// Routes that never produce a session must not go through here.
func (c *Client) sessionResult(ctx context.Context, flow, op string, method DeliveryMethod, secret string, body any) (*AuthenticationResult, error) {
	res, err := c.call(ctx, flow, op, method, secret, body)
	if err != nil {
		return nil, err
	}

	var jr jwtResponse
	if err := json.Unmarshal(res.Body, &jr); err != nil {
		return nil, ErrDecodeError.WithCause(err)
	}
	return assembleAuthenticationResult(&jr, res)
}
