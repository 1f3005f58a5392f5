package latchsdk

// ============================================================================
// Delivery Methods
// ============================================================================

// DeliveryMethod selects the channel used to deliver a one-time code or link.
// It doubles as the wire path segment for delivery-routed endpoints, and
// determines which user field must be non-empty at sign-up.
type DeliveryMethod string

const (
	// DeliveryMethodEmail delivers codes and links via email.
	DeliveryMethodEmail DeliveryMethod = "email"

	// DeliveryMethodSMS delivers codes via SMS.
	DeliveryMethodSMS DeliveryMethod = "sms"

	// DeliveryMethodWhatsApp delivers codes via WhatsApp.
	DeliveryMethodWhatsApp DeliveryMethod = "whatsapp"
)

// valid reports whether the delivery method is one of the closed variant set.
func (m DeliveryMethod) valid() bool {
	switch m {
	case DeliveryMethodEmail, DeliveryMethodSMS, DeliveryMethodWhatsApp:
		return true
	}
	return false
}

// ============================================================================
// User Types
// ============================================================================

// SignUpDetails is an optional bag of user attributes for sign-up calls.
// Empty fields are omitted from the request entirely, never sent as "".
type SignUpDetails struct {
	// Name is the user's display name.
	Name string `json:"name,omitempty"`

	// Email is the user's email address.
	Email string `json:"email,omitempty"`

	// Phone is the user's phone number in E.164 format.
	Phone string `json:"phone,omitempty"`
}

// UserInfo describes the authenticated user as reported by the service.
type UserInfo struct {
	// UserID is the unique identifier for the user.
	UserID string `json:"userId"`

	// LoginIDs are the identifiers the user can sign in with, in the order
	// the service reports them.
	LoginIDs []string `json:"loginIds"`

	// Name is the user's display name.
	Name string `json:"name,omitempty"`

	// Picture is a URL to the user's profile picture.
	Picture string `json:"picture,omitempty"`

	// Email is the user's email address.
	Email string `json:"email,omitempty"`

	// EmailVerified reports whether the email address has been verified.
	EmailVerified bool `json:"verifiedEmail"`

	// Phone is the user's phone number.
	Phone string `json:"phone,omitempty"`

	// PhoneVerified reports whether the phone number has been verified.
	PhoneVerified bool `json:"verifiedPhone"`
}

// ============================================================================
// Authentication Results
// ============================================================================

// AuthenticationResult is the uniform outcome of every successful
// authentication call. Values are created fresh per call and owned by the
// caller; the SDK retains nothing.
type AuthenticationResult struct {
	// SessionToken is the short-lived credential attached to application
	// requests. The SDK propagates it opaquely and never parses it.
	SessionToken string

	// RefreshToken is the long-lived credential used to mint new session
	// tokens. Empty for calls that never produce one.
	RefreshToken string

	// User describes the authenticated user, when the service included it.
	User *UserInfo

	// FirstAuthentication reports whether this is the first time this user
	// completed an authentication.
	FirstAuthentication bool
}

// EnchantedLinkResponse is returned when an enchanted link flow is initiated.
// The PendingRef is the caller's handle for awaiting out-of-band confirmation;
// the LinkID tells the user which of the displayed links to click.
type EnchantedLinkResponse struct {
	PendingRef  string `json:"pendingRef"`
	LinkID      string `json:"linkId"`
	MaskedEmail string `json:"maskedEmail"`
}

// TOTPResponse is returned when a TOTP seed is provisioned for a user.
type TOTPResponse struct {
	// ProvisioningURL is the otpauth:// URL for authenticator apps.
	ProvisioningURL string `json:"provisioningUrl"`

	// Image is a base64-encoded QR code image of the provisioning URL.
	Image string `json:"image"`

	// Key is the base32-encoded TOTP seed for manual entry.
	Key string `json:"key"`
}

// ============================================================================
// Internal Wire Types
// ============================================================================

// jwtResponse is the wire shape of every session-bearing success body.
type jwtResponse struct {
	SessionJWT string    `json:"sessionJwt"`
	RefreshJWT string    `json:"refreshJwt,omitempty"`
	User       *UserInfo `json:"user,omitempty"`
	FirstSeen  bool      `json:"firstSeen"`
}

// maskedAddressResponse is returned by OTP and magic link initiation calls.
type maskedAddressResponse struct {
	MaskedEmail string `json:"maskedEmail,omitempty"`
	MaskedPhone string `json:"maskedPhone,omitempty"`
}

// masked returns whichever masked address matches the delivery method.
func (r *maskedAddressResponse) masked(method DeliveryMethod) string {
	if method == DeliveryMethodEmail {
		return r.MaskedEmail
	}
	return r.MaskedPhone
}

// urlResponse is returned by OAuth and SSO start calls.
type urlResponse struct {
	URL string `json:"url"`
}
