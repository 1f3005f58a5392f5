/*
Package latchsdk provides the Go client SDK for the Latch authentication
service.

# Overview

Latch authenticates users through one-time codes (OTP), authenticator apps
(TOTP), magic links, enchanted links, social login (OAuth), tenant SSO,
passwords and machine access keys. The SDK turns each flow into typed calls
against the service and assembles every successful outcome into the same
AuthenticationResult, regardless of which flow produced it.

Create a Client with your project ID and pick a flow:

	client, err := latchsdk.NewClient(latchsdk.Config{ProjectID: "P_example"})

	// Send a one-time code over email
	masked, err := client.OTP().SignUpOrIn(ctx, latchsdk.DeliveryMethodEmail, "dana@example.com")

	// ... collect the code from the user ...
	auth, err := client.OTP().Verify(ctx, latchsdk.DeliveryMethodEmail, "dana@example.com", code)

	fmt.Println(auth.SessionToken, auth.RefreshToken, auth.User.Name)

The Client holds no per-user state: each call builds its own request and
returns its own result, so one Client serves any number of concurrent
authentications.

# Sessions and tokens

A successful authentication yields a short-lived session token plus,
usually, a long-lived refresh token delivered through the DSR response
cookie. The access key exchange is the exception: its refresh credential
arrives inline in the body and no cookie is involved. Both tokens are opaque
strings to the SDK; it never parses or validates their contents.

Session upkeep goes through the Sessions interface:

	user, err := client.Sessions().Me(ctx, auth.RefreshToken)
	auth2, err := client.Sessions().Refresh(ctx, auth.RefreshToken)
	err = client.Sessions().Logout(ctx, auth.RefreshToken)

Persisting tokens across process restarts is the application's concern; the
SDK deliberately has no storage.

# Enchanted links

Enchanted links complete out-of-band: the user clicks an emailed link,
possibly on a different device, while the initiating application waits. The
initiation call returns a pending reference and the identifier of the link
the user must pick:

	resp, err := client.EnchantedLink().SignIn(ctx, "dana@example.com", redirectURL)
	fmt.Println("click the link labelled", resp.LinkID)

	auth, err := client.EnchantedLink().WaitForSession(ctx, resp.PendingRef, 0)

WaitForSession polls once a second until the link is confirmed, an error
other than "still pending" or a network failure occurs, or the timeout
(default two minutes) elapses, in which case it returns ErrLinkExpired.
Cancel the context to stop waiting early. Applications that want their own
cadence can call GetSession directly; it performs exactly one check.

# Error handling

Every failure is a *Error identified by a stable code. Compare by code, not
by text and not by variable identity, since the service may return codes
newer than this SDK:

	_, err := client.OTP().Verify(ctx, method, loginID, code)
	switch {
	case errors.Is(err, latchsdk.ErrInvalidOTPCode):
		// wrong code, let the user retry
	case errors.Is(err, latchsdk.ErrTooManyOTPAttempts):
		// start over with a fresh code
	case latchsdk.ErrorMatches(err, "some_newer_code"):
		// codes without a predefined value match by string
	}

Transport failures classify as ErrNetworkError, undecodable responses as
ErrDecodeError; both wrap their cause. Context cancellation is surfaced as
the context's own error, never disguised as a network failure.

# Updates and authorization

Operations that change a signed-in user (update email/phone, new TOTP seed,
password update) require the user's refresh token and send it as
"Bearer <projectID>:<refreshToken>". Exchange operations authorize with the
secret being exchanged instead. The SDK composes these headers; callers only
supply the credential.
*/
package latchsdk
