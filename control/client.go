// Package control is the HTTP client for the local sidecar's control
// plane: readying/unreadying the server instance and fetching allocation
// payload data.
package control

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "http://localhost:8086"

// FailureDetail is the common shape an endpoint-specific error decodes
// into, or is synthesized as when decoding fails.
type FailureDetail struct {
	Status int
	Title  string
	Detail string
}

func (f *FailureDetail) Error() string {
	return fmt.Sprintf("control: %d %s: %s", f.Status, f.Title, f.Detail)
}

// errorResponseBody is the generic error body returned by ReadyServer and
// UnreadyServer.
type errorResponseBody struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// payloadAllocationErrorResponseBody is the error body returned by the
// PayloadAllocation endpoint.
type payloadAllocationErrorResponseBody struct {
	Status       int    `json:"status"`
	ErrorMessage string `json:"errorMessage"`
}

// payloadTokenResponseBody is the success-or-error body returned by the
// PayloadToken endpoint: the wire format folds both shapes into one object.
type payloadTokenResponseBody struct {
	Token string `json:"token"`
	Error string `json:"error"`
}

// Client is the control-plane HTTP client. Every exposed operation is
// asynchronous from the caller's point of view: it issues the request on
// its own goroutine and reports completion through onSuccess/onFailure.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client at construction time.
type Option func(*Client)

// WithHTTPClient overrides the default *http.Client, useful in tests that
// need a shorter timeout or a custom transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New constructs a Client against baseURL (normally
// "http://localhost:8086").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewDefault constructs a Client against the sidecar's well-known local
// base URL.
func NewDefault(opts ...Option) *Client {
	return New(defaultBaseURL, opts...)
}

type readyServerRequest struct {
	ServerID     int64  `json:"serverId"`
	AllocationID string `json:"allocationId"`
}

type unreadyServerRequest struct {
	ServerID int64 `json:"serverId"`
}

// ReadyServer marks the server instance ready to accept players.
func (c *Client) ReadyServer(ctx context.Context, serverID int64, allocationID string, onSuccess func(), onFailure func(*FailureDetail)) {
	go func() {
		body, err := json.Marshal(readyServerRequest{ServerID: serverID, AllocationID: allocationID})
		if err != nil {
			onFailure(&FailureDetail{Status: 500, Title: "internal error", Detail: err.Error()})
			return
		}
		c.doJSON(ctx, http.MethodPost, "/v1/ready", body, decodeErrorResponseBody, onSuccess, onFailure)
	}()
}

// UnreadyServer marks the server instance no longer ready to accept
// players.
func (c *Client) UnreadyServer(ctx context.Context, serverID int64, onSuccess func(), onFailure func(*FailureDetail)) {
	go func() {
		body, err := json.Marshal(unreadyServerRequest{ServerID: serverID})
		if err != nil {
			onFailure(&FailureDetail{Status: 500, Title: "internal error", Detail: err.Error()})
			return
		}
		c.doJSON(ctx, http.MethodPost, "/v1/unready", body, decodeErrorResponseBody, onSuccess, onFailure)
	}()
}

// GetPayloadAllocation fetches the raw allocation payload body for
// allocationID. onSuccess receives the response body verbatim.
func (c *Client) GetPayloadAllocation(ctx context.Context, allocationID string, onSuccess func(string), onFailure func(*FailureDetail)) {
	go func() {
		path := fmt.Sprintf("/v1/payload/%s", allocationID)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			onFailure(&FailureDetail{Status: 500, Title: "internal error", Detail: err.Error()})
			return
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			onFailure(&FailureDetail{Status: 500, Title: "request failed", Detail: err.Error()})
			return
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			onFailure(&FailureDetail{Status: 500, Title: "reading response body failed", Detail: err.Error()})
			return
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			onFailure(decodePayloadAllocationError(resp.StatusCode, data))
			return
		}

		onSuccess(string(data))
	}()
}

// GetPayloadToken fetches a fresh token for retrieving allocation payloads.
func (c *Client) GetPayloadToken(ctx context.Context, onSuccess func(string), onFailure func(*FailureDetail)) {
	go func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/payload/token", nil)
		if err != nil {
			onFailure(&FailureDetail{Status: 500, Title: "internal error", Detail: err.Error()})
			return
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			onFailure(&FailureDetail{Status: 500, Title: "request failed", Detail: err.Error()})
			return
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			onFailure(&FailureDetail{Status: 500, Title: "reading response body failed", Detail: err.Error()})
			return
		}

		var body payloadTokenResponseBody
		if err := json.Unmarshal(data, &body); err != nil {
			onFailure(&FailureDetail{Status: 500, Title: "deserialization failed", Detail: err.Error()})
			return
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 || body.Error != "" {
			onFailure(&FailureDetail{Status: resp.StatusCode, Title: "payload token error", Detail: body.Error})
			return
		}

		onSuccess(body.Token)
	}()
}

func (c *Client) doJSON(ctx context.Context, method, path string, body []byte, decodeErr func(int, []byte) *FailureDetail, onSuccess func(), onFailure func(*FailureDetail)) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		onFailure(&FailureDetail{Status: 500, Title: "internal error", Detail: err.Error()})
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		onFailure(&FailureDetail{Status: 500, Title: "request failed", Detail: err.Error()})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		onSuccess()
		return
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		onFailure(&FailureDetail{Status: 500, Title: "reading response body failed", Detail: err.Error()})
		return
	}
	onFailure(decodeErr(resp.StatusCode, data))
}

func decodeErrorResponseBody(status int, data []byte) *FailureDetail {
	var body errorResponseBody
	if err := json.Unmarshal(data, &body); err != nil {
		return &FailureDetail{Status: 500, Title: "deserialization failed", Detail: err.Error()}
	}
	return &FailureDetail{Status: body.Status, Title: body.Title, Detail: body.Detail}
}

func decodePayloadAllocationError(status int, data []byte) *FailureDetail {
	var body payloadAllocationErrorResponseBody
	if err := json.Unmarshal(data, &body); err != nil {
		return &FailureDetail{Status: 500, Title: "deserialization failed", Detail: err.Error()}
	}
	return &FailureDetail{Status: body.Status, Title: "payload allocation error", Detail: body.ErrorMessage}
}
