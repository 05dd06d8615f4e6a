package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

// DefaultTimeout bounds each request when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// HTTPClient is a client of the authkeeper HTTP API. It is safe for
// concurrent use.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the API rooted at baseURL
// (e.g. "http://localhost:3000/api").
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Register creates an account and returns its token.
func (c *HTTPClient) Register(ctx context.Context, username, email, password string) (string, error) {
	var resp common.TokenResponse
	req := common.RegisterRequest{Username: username, Email: email, Password: password}
	if err := c.do(ctx, "register", http.MethodPost, common.PathRegister, "", req, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Login exchanges credentials for a token.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (string, error) {
	var resp common.TokenResponse
	req := common.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, "login", http.MethodPost, common.PathLogin, "", req, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Profile returns the user the token belongs to.
func (c *HTTPClient) Profile(ctx context.Context, token string) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, "profile", http.MethodGet, common.PathUser, token, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Ping checks that the server is reachable.
func (c *HTTPClient) Ping(ctx context.Context) error {
	var resp common.PingResponse
	if err := c.do(ctx, "ping", http.MethodGet, common.PathPing, "", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return newError("ping", 0, common.ErrStorageUnavailable)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, op, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return newError(op, 0, errors.Join(common.ErrorInternal, err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return newError(op, 0, errors.Join(common.ErrorInternal, err))
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
			return newError(op, 0, ctxErr)
		}
		// timeouts, refused connections and DNS failures alike
		return newError(op, 0, fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return newError(op, resp.StatusCode, fmt.Errorf("%w: read body: %w", common.ErrStorageUnavailable, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e common.ErrorResponse
		_ = json.Unmarshal(data, &e)
		return newError(op, resp.StatusCode, errorForStatus(resp.StatusCode, e.Error))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return newError(op, resp.StatusCode, errors.Join(common.ErrorInternal, fmt.Errorf("decode response: %w", err)))
	}
	return nil
}
