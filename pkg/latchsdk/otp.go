package latchsdk

import "context"

// OTP provides authentication with one-time codes delivered via email, SMS
// or WhatsApp. Initiation calls return the masked address the code was sent
// to; Verify completes the flow and produces the session.
type OTP interface {
	// SignUp creates a new user and sends a code to the login ID over the
	// given delivery method. Details are optional.
	SignUp(ctx context.Context, method DeliveryMethod, loginID string, details *SignUpDetails) (string, error)

	// SignIn sends a code to an existing user.
	SignIn(ctx context.Context, method DeliveryMethod, loginID string) (string, error)

	// SignUpOrIn sends a code, creating the user first if needed.
	SignUpOrIn(ctx context.Context, method DeliveryMethod, loginID string) (string, error)

	// Verify exchanges a received code for an authenticated session.
	Verify(ctx context.Context, method DeliveryMethod, loginID, code string) (*AuthenticationResult, error)

	// UpdateEmail starts an email change for a signed-in user. Requires the
	// user's refresh token.
	UpdateEmail(ctx context.Context, loginID, email, refreshToken string) (string, error)

	// UpdatePhone starts a phone change for a signed-in user. Requires the
	// user's refresh token.
	UpdatePhone(ctx context.Context, method DeliveryMethod, loginID, phone, refreshToken string) (string, error)
}

type otpFlow struct {
	client *Client
}

type otpRequest struct {
	LoginID string         `json:"loginId"`
	Code    string         `json:"code,omitempty"`
	User    *SignUpDetails `json:"user,omitempty"`
	Email   string         `json:"email,omitempty"`
	Phone   string         `json:"phone,omitempty"`
}

func (f *otpFlow) SignUp(ctx context.Context, method DeliveryMethod, loginID string, details *SignUpDetails) (string, error) {
	if err := validateDelivery(method, loginID); err != nil {
		return "", err
	}
	var out maskedAddressResponse
	err := f.client.callJSON(ctx, flowOTP, opSignUp, method, "",
		&otpRequest{LoginID: loginID, User: details}, &out)
	if err != nil {
		return "", err
	}
	return out.masked(method), nil
}

func (f *otpFlow) SignIn(ctx context.Context, method DeliveryMethod, loginID string) (string, error) {
	if err := validateDelivery(method, loginID); err != nil {
		return "", err
	}
	var out maskedAddressResponse
	err := f.client.callJSON(ctx, flowOTP, opSignIn, method, "", &otpRequest{LoginID: loginID}, &out)
	if err != nil {
		return "", err
	}
	return out.masked(method), nil
}

func (f *otpFlow) SignUpOrIn(ctx context.Context, method DeliveryMethod, loginID string) (string, error) {
	if err := validateDelivery(method, loginID); err != nil {
		return "", err
	}
	var out maskedAddressResponse
	err := f.client.callJSON(ctx, flowOTP, opSignUpOrIn, method, "", &otpRequest{LoginID: loginID}, &out)
	if err != nil {
		return "", err
	}
	return out.masked(method), nil
}

func (f *otpFlow) Verify(ctx context.Context, method DeliveryMethod, loginID, code string) (*AuthenticationResult, error) {
	if err := validateDelivery(method, loginID); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, ErrMissingArguments.WithDescription("code is required")
	}
	return f.client.sessionResult(ctx, flowOTP, opVerify, method, "",
		&otpRequest{LoginID: loginID, Code: code})
}

func (f *otpFlow) UpdateEmail(ctx context.Context, loginID, email, refreshToken string) (string, error) {
	if loginID == "" || email == "" {
		return "", ErrMissingArguments.WithDescription("loginId and email are required")
	}
	var out maskedAddressResponse
	err := f.client.callJSON(ctx, flowOTP, opUpdateEmail, DeliveryMethodEmail, refreshToken,
		&otpRequest{LoginID: loginID, Email: email}, &out)
	if err != nil {
		return "", err
	}
	return out.MaskedEmail, nil
}

func (f *otpFlow) UpdatePhone(ctx context.Context, method DeliveryMethod, loginID, phone, refreshToken string) (string, error) {
	if err := validateDelivery(method, loginID); err != nil {
		return "", err
	}
	if phone == "" {
		return "", ErrMissingArguments.WithDescription("phone is required")
	}
	var out maskedAddressResponse
	err := f.client.callJSON(ctx, flowOTP, opUpdatePhone, method, refreshToken,
		&otpRequest{LoginID: loginID, Phone: phone}, &out)
	if err != nil {
		return "", err
	}
	return out.MaskedPhone, nil
}

// validateDelivery checks the common argument pair of delivery-routed calls.
func validateDelivery(method DeliveryMethod, loginID string) error {
	if !method.valid() {
		return ErrInvalidArguments.WithDescription("unsupported delivery method")
	}
	if loginID == "" {
		return ErrMissingArguments.WithDescription("loginId is required")
	}
	return nil
}
