package latchsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/oklog/ulid/v2"
)

// SDK identification headers sent with every request.
const (
	sdkName    = "latch-go"
	sdkVersion = "0.9.0"

	headerSDKName    = "x-sdk-name"
	headerSDKVersion = "x-sdk-version"
	headerRequestID  = "x-request-id"
)

// apiBasePath is the base path all authentication endpoints live under.
const apiBasePath = "/v1/auth/"

// ============================================================================
// Transport Interface
// ============================================================================

// Request describes a single call for a Transport to execute. Paths are
// relative to the v1/auth base; the body is JSON-encoded when non-nil.
type Request struct {
	Method        string
	Path          string
	Query         url.Values
	Body          any
	Authorization string
}

// Response is the raw outcome of an executed request: status, body bytes,
// response headers (for cookie extraction) and the final URL.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
	URL        *url.URL
}

// Transport executes HTTP requests on behalf of the SDK. It returns an error
// only when no response was obtained at all; non-2xx responses are returned
// as a *Response for the SDK to classify. A custom Transport can be supplied
// through Config for testing or instrumentation.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// ============================================================================
// Default Transport
// ============================================================================

// httpTransport is the default Transport over net/http.
type httpTransport struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func newHTTPTransport(baseURL string, client *http.Client, logger *slog.Logger) *httpTransport {
	return &httpTransport{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

func (t *httpTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, ErrEncodeError.WithCause(err)
		}
		body = bytes.NewReader(encoded)
	}

	target := t.baseURL + apiBasePath + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, ErrEncodeError.WithCause(err)
	}

	reqID := ulid.Make().String()
	httpReq.Header.Set(headerSDKName, sdkName)
	httpReq.Header.Set(headerSDKVersion, sdkVersion)
	httpReq.Header.Set(headerRequestID, reqID)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Authorization != "" {
		httpReq.Header.Set("Authorization", req.Authorization)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		t.logger.DebugContext(ctx, "request failed",
			"method", req.Method, "path", req.Path, "req_id", reqID, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	t.logger.DebugContext(ctx, "request completed",
		"method", req.Method, "path", req.Path, "req_id", reqID, "status", resp.StatusCode)

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       bodyBytes,
		Header:     resp.Header,
		URL:        resp.Request.URL,
	}, nil
}
