package sdk_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/latch-go/pkg/latchsdk"
)

func TestOTPLifecycle(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	loginID := "dana@example.com"

	masked, err := e.client.OTP().SignUpOrIn(ctx, latchsdk.DeliveryMethodEmail, loginID)
	require.NoError(t, err)
	require.Equal(t, "d***@example.com", masked)

	code := e.server.LastOTPCode(loginID)
	require.Len(t, code, 6)

	t.Run("wrong code is rejected", func(t *testing.T) {
		_, err := e.client.OTP().Verify(ctx, latchsdk.DeliveryMethodEmail, loginID, "000000x")
		require.ErrorIs(t, err, latchsdk.ErrInvalidOTPCode)
	})

	auth, err := e.client.OTP().Verify(ctx, latchsdk.DeliveryMethodEmail, loginID, code)
	require.NoError(t, err)
	e.requireSession(t, auth)
	require.True(t, auth.FirstAuthentication)
	require.NotNil(t, auth.User)
	require.True(t, auth.User.EmailVerified)

	t.Run("me", func(t *testing.T) {
		user, err := e.client.Sessions().Me(ctx, auth.RefreshToken)
		require.NoError(t, err)
		require.Contains(t, user.LoginIDs, loginID)
	})

	t.Run("refresh", func(t *testing.T) {
		refreshed, err := e.client.Sessions().Refresh(ctx, auth.RefreshToken)
		require.NoError(t, err)
		require.NotEmpty(t, refreshed.SessionToken)
		require.False(t, refreshed.FirstAuthentication)
		// The refresh token was not rotated, so nothing new is returned.
		require.Empty(t, refreshed.RefreshToken)
	})

	t.Run("second authentication is not the first", func(t *testing.T) {
		_, err := e.client.OTP().SignIn(ctx, latchsdk.DeliveryMethodEmail, loginID)
		require.NoError(t, err)
		auth2, err := e.client.OTP().Verify(ctx, latchsdk.DeliveryMethodEmail, loginID, e.server.LastOTPCode(loginID))
		require.NoError(t, err)
		require.False(t, auth2.FirstAuthentication)
	})

	t.Run("logout invalidates the refresh token", func(t *testing.T) {
		require.NoError(t, e.client.Sessions().Logout(ctx, auth.RefreshToken))

		_, err := e.client.Sessions().Me(ctx, auth.RefreshToken)
		require.ErrorIs(t, err, latchsdk.ErrInvalidArguments)
	})
}

func TestOTPTooManyAttempts(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	loginID := "brute@example.com"

	_, err := e.client.OTP().SignUpOrIn(ctx, latchsdk.DeliveryMethodEmail, loginID)
	require.NoError(t, err)

	for range 5 {
		_, err := e.client.OTP().Verify(ctx, latchsdk.DeliveryMethodEmail, loginID, "wrong")
		require.ErrorIs(t, err, latchsdk.ErrInvalidOTPCode)
	}
	_, err = e.client.OTP().Verify(ctx, latchsdk.DeliveryMethodEmail, loginID, "wrong")
	require.ErrorIs(t, err, latchsdk.ErrTooManyOTPAttempts)
}

func TestOTPUpdateContact(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	loginID := "update-me@example.com"

	_, err := e.client.OTP().SignUpOrIn(ctx, latchsdk.DeliveryMethodEmail, loginID)
	require.NoError(t, err)
	auth, err := e.client.OTP().Verify(ctx, latchsdk.DeliveryMethodEmail, loginID, e.server.LastOTPCode(loginID))
	require.NoError(t, err)

	t.Run("update email requires the refresh token", func(t *testing.T) {
		_, err := e.client.OTP().UpdateEmail(ctx, loginID, "new@example.com", "")
		require.ErrorIs(t, err, latchsdk.ErrMissingArguments)

		masked, err := e.client.OTP().UpdateEmail(ctx, loginID, "new@example.com", auth.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, "n**@example.com", masked)
	})

	t.Run("update phone", func(t *testing.T) {
		masked, err := e.client.OTP().UpdatePhone(ctx, latchsdk.DeliveryMethodSMS, loginID, "+61400000001", auth.RefreshToken)
		require.NoError(t, err)
		require.NotEmpty(t, masked)
	})
}

func TestOTPSignInUnknownUser(t *testing.T) {
	t.Parallel()

	e := newEnv(t)

	_, err := e.client.OTP().SignIn(context.Background(), latchsdk.DeliveryMethodEmail, "nobody@example.com")
	require.ErrorIs(t, err, latchsdk.ErrInvalidArguments)
}
