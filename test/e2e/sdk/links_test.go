package sdk_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/latch-go/pkg/latchsdk"
)

const redirectURL = "https://app.example.com/callback"

func TestMagicLinkLifecycle(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	loginID := "magic@example.com"

	masked, err := e.client.MagicLink().SignUpOrIn(ctx, latchsdk.DeliveryMethodEmail, loginID, redirectURL)
	require.NoError(t, err)
	require.Equal(t, "m****@example.com", masked)

	token := e.server.LastMagicToken(loginID)
	require.NotEmpty(t, token)

	auth, err := e.client.MagicLink().Verify(ctx, token)
	require.NoError(t, err)
	e.requireSession(t, auth)
	require.True(t, auth.FirstAuthentication)

	t.Run("tokens are single use", func(t *testing.T) {
		_, err := e.client.MagicLink().Verify(ctx, token)
		require.ErrorIs(t, err, latchsdk.ErrLinkExpired)
	})

	t.Run("update email sends a fresh link", func(t *testing.T) {
		masked, err := e.client.MagicLink().UpdateEmail(ctx, loginID, "fresh@example.com", redirectURL, auth.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, "f****@example.com", masked)
		require.NotEmpty(t, e.server.LastMagicToken(loginID))
	})
}

func TestEnchantedLinkLifecycle(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	loginID := "enchanted@example.com"

	resp, err := e.client.EnchantedLink().SignUp(ctx, loginID, redirectURL, &latchsdk.SignUpDetails{Name: "Enchanted User"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.PendingRef)
	require.NotEmpty(t, resp.LinkID)
	require.Equal(t, "e********@example.com", resp.MaskedEmail)

	t.Run("session is pending until the link is clicked", func(t *testing.T) {
		_, err := e.client.EnchantedLink().GetSession(ctx, resp.PendingRef)
		require.ErrorIs(t, err, latchsdk.ErrLinkPending)
	})

	// Confirm the link out-of-band while WaitForSession polls, the way a
	// user on another device would.
	go func() {
		time.Sleep(30 * time.Millisecond)
		token := e.server.EnchantedLinkToken(resp.PendingRef)
		body := map[string]string{"token": token}
		_, _ = postJSON(e, "/v1/auth/enchantedlink/verify", body)
	}()

	auth, err := e.client.EnchantedLink().WaitForSession(ctx, resp.PendingRef, 5*time.Second)
	require.NoError(t, err)
	e.requireSession(t, auth)
	require.True(t, auth.FirstAuthentication)

	t.Run("pending reference is consumed", func(t *testing.T) {
		_, err := e.client.EnchantedLink().GetSession(ctx, resp.PendingRef)
		require.ErrorIs(t, err, latchsdk.ErrLinkExpired)
	})

	t.Run("update email issues a new pending reference", func(t *testing.T) {
		resp2, err := e.client.EnchantedLink().UpdateEmail(ctx, loginID, "changed@example.com", redirectURL, auth.RefreshToken)
		require.NoError(t, err)
		require.NotEmpty(t, resp2.PendingRef)
		require.NotEqual(t, resp.PendingRef, resp2.PendingRef)
	})
}

func TestEnchantedLinkSignInUnknownUser(t *testing.T) {
	t.Parallel()

	e := newEnv(t)

	_, err := e.client.EnchantedLink().SignIn(context.Background(), "ghost@example.com", redirectURL)
	require.ErrorIs(t, err, latchsdk.ErrInvalidArguments)
}
