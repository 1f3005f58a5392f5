package latchsdk

import (
	"fmt"
	"net/http"
	"strings"
)

// ============================================================================
// Route Dispatch Table
// ============================================================================

// Flow and operation identifiers used as route table keys.
const (
	flowOTP           = "otp"
	flowMagicLink     = "magiclink"
	flowEnchantedLink = "enchantedlink"
	flowTOTP          = "totp"
	flowOAuth         = "oauth"
	flowSSO           = "sso"
	flowPassword      = "password"
	flowAccessKey     = "accesskey"
	flowSession       = "session"
)

const (
	opSignUp      = "signup"
	opSignIn      = "signin"
	opSignUpOrIn  = "signup-in"
	opVerify      = "verify"
	opUpdateEmail = "update-email"
	opUpdatePhone = "update-phone"
	opUpdateKey   = "update-key"
	opUpdate      = "update"
	opReplace     = "replace"
	opSendReset   = "send-reset"
	opStart       = "start"
	opExchange    = "exchange"
	opPending     = "pending-session"
	opMe          = "me"
	opRefresh     = "refresh"
	opLogout      = "logout"
)

// authKind selects how a route's Authorization header is composed.
type authKind int

const (
	// authNone sends no Authorization header.
	authNone authKind = iota

	// authRefresh sends "Bearer <projectID>:<refreshJwt>" from a
	// caller-supplied refresh token.
	authRefresh

	// authExchange sends "Bearer <projectID>:<secret>" where the secret is
	// the credential being exchanged (access key, never a refresh token).
	authExchange
)

type routeKey struct {
	flow string
	op   string
}

// route maps an operation to its wire endpoint. Paths are relative to the
// v1/auth base; a "{method}" segment expands to the delivery method.
type route struct {
	method string
	path   string
	auth   authKind
}

// routes is process-wide immutable configuration: initialized once, read-only
// afterwards, safe for unsynchronized concurrent lookups.
var routes = map[routeKey]route{
	{flowOTP, opSignUp}:      {http.MethodPost, "otp/signup/{method}", authNone},
	{flowOTP, opSignIn}:      {http.MethodPost, "otp/signin/{method}", authNone},
	{flowOTP, opSignUpOrIn}:  {http.MethodPost, "otp/signup-in/{method}", authNone},
	{flowOTP, opVerify}:      {http.MethodPost, "otp/verify/{method}", authNone},
	{flowOTP, opUpdateEmail}: {http.MethodPost, "otp/update/email", authRefresh},
	{flowOTP, opUpdatePhone}: {http.MethodPost, "otp/update/phone", authRefresh},

	{flowMagicLink, opSignUp}:      {http.MethodPost, "magiclink/signup/{method}", authNone},
	{flowMagicLink, opSignIn}:      {http.MethodPost, "magiclink/signin/{method}", authNone},
	{flowMagicLink, opSignUpOrIn}:  {http.MethodPost, "magiclink/signup-in/{method}", authNone},
	{flowMagicLink, opVerify}:      {http.MethodPost, "magiclink/verify", authNone},
	{flowMagicLink, opUpdateEmail}: {http.MethodPost, "magiclink/update/email", authRefresh},
	{flowMagicLink, opUpdatePhone}: {http.MethodPost, "magiclink/update/phone", authRefresh},

	{flowEnchantedLink, opSignUp}:      {http.MethodPost, "enchantedlink/signup/email", authNone},
	{flowEnchantedLink, opSignIn}:      {http.MethodPost, "enchantedlink/signin/email", authNone},
	{flowEnchantedLink, opPending}:     {http.MethodPost, "enchantedlink/pending-session", authNone},
	{flowEnchantedLink, opUpdateEmail}: {http.MethodPost, "enchantedlink/update/email", authRefresh},

	{flowTOTP, opSignUp}:    {http.MethodPost, "totp/signup", authNone},
	{flowTOTP, opUpdateKey}: {http.MethodPost, "totp/update", authRefresh},
	{flowTOTP, opVerify}:    {http.MethodPost, "totp/verify", authNone},

	{flowOAuth, opStart}:    {http.MethodPost, "oauth/authorize", authNone},
	{flowOAuth, opExchange}: {http.MethodPost, "oauth/exchange", authNone},

	{flowSSO, opStart}:    {http.MethodPost, "sso/authorize", authNone},
	{flowSSO, opExchange}: {http.MethodPost, "sso/exchange", authNone},

	{flowPassword, opSignUp}:    {http.MethodPost, "password/signup", authNone},
	{flowPassword, opSignIn}:    {http.MethodPost, "password/signin", authNone},
	{flowPassword, opUpdate}:    {http.MethodPost, "password/update", authRefresh},
	{flowPassword, opReplace}:   {http.MethodPost, "password/replace", authNone},
	{flowPassword, opSendReset}: {http.MethodPost, "password/reset", authNone},

	{flowAccessKey, opExchange}: {http.MethodPost, "accesskey/exchange", authExchange},

	{flowSession, opMe}:      {http.MethodGet, "me", authRefresh},
	{flowSession, opRefresh}: {http.MethodPost, "refresh", authRefresh},
	{flowSession, opLogout}:  {http.MethodPost, "logout", authRefresh},
}

// mustRoute resolves a (flow, operation) pair to its route. Every pair used
// by the public surface maps to exactly one entry; a miss is a bug in the
// SDK, not a runtime condition, hence the panic.
func mustRoute(flow, op string) route {
	r, ok := routes[routeKey{flow, op}]
	if !ok {
		panic(fmt.Sprintf("latchsdk: no route for %s/%s", flow, op))
	}
	return r
}

// endpoint expands the route's path template for the given delivery method.
func (r route) endpoint(method DeliveryMethod) string {
	return strings.Replace(r.path, "{method}", string(method), 1)
}
