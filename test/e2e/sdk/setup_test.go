package sdk_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/latch-go/internal/testserver"
	"github.com/aussiebroadwan/latch-go/pkg/latchsdk"
)

const projectID = "P_e2e"

type env struct {
	client  *latchsdk.Client
	server  *testserver.Server
	baseURL string
}

// newEnv starts an in-memory Latch service and a client pointed at it. The
// short poll interval keeps the enchanted link tests fast.
func newEnv(t *testing.T) *env {
	t.Helper()

	server, err := testserver.New(projectID)
	require.NoError(t, err)

	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)

	client, err := latchsdk.NewClient(latchsdk.Config{
		ProjectID:                 projectID,
		BaseURL:                   httpServer.URL,
		EnchantedLinkPollInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	return &env{client: client, server: server, baseURL: httpServer.URL}
}

// postJSON hits the service directly, bypassing the SDK. Used for requests
// the SDK never issues itself, like the emailed link target.
func postJSON(e *env, path string, body any) (*http.Response, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(e.baseURL+path, "application/json", bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	resp.Body.Close()
	return resp, nil
}

// requireSession checks the invariants every session-bearing result must
// hold: a verifiable session JWT for the right user and a refresh token.
func (e *env) requireSession(t *testing.T, auth *latchsdk.AuthenticationResult) {
	t.Helper()

	require.NotNil(t, auth)
	require.NotEmpty(t, auth.SessionToken)
	require.NotEmpty(t, auth.RefreshToken)

	userID, err := e.server.VerifySession(auth.SessionToken)
	require.NoError(t, err)
	if auth.User != nil {
		require.Equal(t, auth.User.UserID, userID)
	}
}
