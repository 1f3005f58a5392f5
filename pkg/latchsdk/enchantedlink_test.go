package latchsdk

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// stubTransport drives the client with scripted responses.
type stubTransport struct {
	calls int64
	do    func(ctx context.Context, req *Request) (*Response, error)
}

func (s *stubTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	atomic.AddInt64(&s.calls, 1)
	return s.do(ctx, req)
}

func (s *stubTransport) callCount() int64 {
	return atomic.LoadInt64(&s.calls)
}

func newStubClient(t *testing.T, transport Transport, pollInterval time.Duration) *Client {
	t.Helper()
	client, err := NewClient(Config{
		ProjectID:                 "P_test",
		Transport:                 transport,
		EnchantedLinkPollInterval: pollInterval,
	})
	require.NoError(t, err)
	return client
}

func pendingResponse() *Response {
	return &Response{
		StatusCode: http.StatusUnauthorized,
		Body:       []byte(`{"errorCode":"link_pending","errorDescription":"the link has not been confirmed yet"}`),
	}
}

func sessionResponse() *Response {
	h := http.Header{}
	h.Add("Set-Cookie", "DSR=refresh-1; Path=/; HttpOnly")
	return &Response{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"sessionJwt":"session-1","firstSeen":false}`),
		Header:     h,
	}
}

func TestWaitForSession(t *testing.T) {
	t.Parallel()

	t.Run("returns once the link is confirmed", func(t *testing.T) {
		t.Parallel()

		stub := &stubTransport{}
		stub.do = func(ctx context.Context, req *Request) (*Response, error) {
			require.Equal(t, "enchantedlink/pending-session", req.Path)
			if stub.callCount() < 4 {
				return pendingResponse(), nil
			}
			return sessionResponse(), nil
		}
		client := newStubClient(t, stub, 5*time.Millisecond)

		auth, err := client.EnchantedLink().WaitForSession(context.Background(), "ref-1", time.Second)
		require.NoError(t, err)
		require.Equal(t, "session-1", auth.SessionToken)
		require.Equal(t, "refresh-1", auth.RefreshToken)
		require.EqualValues(t, 4, stub.callCount())
	})

	t.Run("network errors are retried until the deadline", func(t *testing.T) {
		t.Parallel()

		stub := &stubTransport{}
		stub.do = func(ctx context.Context, req *Request) (*Response, error) {
			return nil, errors.New("connection refused")
		}
		client := newStubClient(t, stub, 5*time.Millisecond)

		start := time.Now()
		_, err := client.EnchantedLink().WaitForSession(context.Background(), "ref-1", 50*time.Millisecond)
		require.ErrorIs(t, err, ErrLinkExpired)
		require.NotErrorIs(t, err, ErrNetworkError)
		require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
		require.Greater(t, stub.callCount(), int64(1))
	})

	t.Run("pending until the deadline expires the link", func(t *testing.T) {
		t.Parallel()

		stub := &stubTransport{}
		stub.do = func(ctx context.Context, req *Request) (*Response, error) {
			return pendingResponse(), nil
		}
		client := newStubClient(t, stub, 5*time.Millisecond)

		_, err := client.EnchantedLink().WaitForSession(context.Background(), "ref-1", 40*time.Millisecond)
		require.ErrorIs(t, err, ErrLinkExpired)
	})

	t.Run("other errors abort immediately", func(t *testing.T) {
		t.Parallel()

		stub := &stubTransport{}
		stub.do = func(ctx context.Context, req *Request) (*Response, error) {
			return &Response{
				StatusCode: http.StatusBadRequest,
				Body:       []byte(`{"errorCode":"bad_request","errorDescription":"malformed"}`),
			}, nil
		}
		client := newStubClient(t, stub, 5*time.Millisecond)

		_, err := client.EnchantedLink().WaitForSession(context.Background(), "ref-1", time.Second)
		require.ErrorIs(t, err, ErrBadRequest)
		require.EqualValues(t, 1, stub.callCount())
	})

	t.Run("cancellation stops polling with the context error", func(t *testing.T) {
		t.Parallel()

		stub := &stubTransport{}
		stub.do = func(ctx context.Context, req *Request) (*Response, error) {
			return pendingResponse(), nil
		}
		client := newStubClient(t, stub, 10*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(25 * time.Millisecond)
			cancel()
		}()

		start := time.Now()
		_, err := client.EnchantedLink().WaitForSession(ctx, "ref-1", 10*time.Second)
		require.ErrorIs(t, err, context.Canceled)
		require.Less(t, time.Since(start), time.Second)
	})

	t.Run("missing pending reference", func(t *testing.T) {
		t.Parallel()

		stub := &stubTransport{}
		stub.do = func(ctx context.Context, req *Request) (*Response, error) {
			t.Fatal("no request should be issued")
			return nil, nil
		}
		client := newStubClient(t, stub, 5*time.Millisecond)

		_, err := client.EnchantedLink().WaitForSession(context.Background(), "", time.Second)
		require.ErrorIs(t, err, ErrMissingArguments)
	})

	t.Run("zero timeout selects the default", func(t *testing.T) {
		t.Parallel()

		stub := &stubTransport{}
		stub.do = func(ctx context.Context, req *Request) (*Response, error) {
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			require.InDelta(t, defaultPollTimeout, time.Until(deadline), float64(5*time.Second))
			return sessionResponse(), nil
		}
		client := newStubClient(t, stub, 5*time.Millisecond)

		_, err := client.EnchantedLink().WaitForSession(context.Background(), "ref-1", 0)
		require.NoError(t, err)
	})
}

func TestGetSession(t *testing.T) {
	t.Parallel()

	t.Run("single check while pending", func(t *testing.T) {
		t.Parallel()

		stub := &stubTransport{}
		stub.do = func(ctx context.Context, req *Request) (*Response, error) {
			return pendingResponse(), nil
		}
		client := newStubClient(t, stub, 5*time.Millisecond)

		_, err := client.EnchantedLink().GetSession(context.Background(), "ref-1")
		require.ErrorIs(t, err, ErrLinkPending)
		require.EqualValues(t, 1, stub.callCount())
	})
}
