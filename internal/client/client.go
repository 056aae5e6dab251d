// Package client talks to the jobdash REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/justsurfingit/jobdash/internal/apierr"
	"github.com/justsurfingit/jobdash/internal/auth"
	"go.uber.org/zap"
)

// TokenStore is where the client reads and refreshes its bearer tokens.
type TokenStore interface {
	Model() AuthModel
	SetTokens(access, refresh string) error
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Tokens  TokenStore
	Logger  *zap.Logger
}

func New(baseURL string, tokens TokenStore, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		Tokens:  tokens,
		Logger:  logger,
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// do sends one request with the bearer token attached. A 401 is retried once
// after refreshing the tokens when a refresh token is available.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	err := c.send(ctx, method, path, query, body, out, true)

	var httpErr *apierr.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnauthorized || !c.canRefresh() {
		return err
	}
	if rerr := c.refresh(ctx); rerr != nil {
		c.Logger.Debug("token refresh failed", zap.Error(rerr))
		return err
	}
	return c.send(ctx, method, path, query, body, out, true)
}

func (c *Client) canRefresh() bool {
	return c.Tokens != nil && c.Tokens.Model().RefreshToken != ""
}

func (c *Client) refresh(ctx context.Context) error {
	var pair auth.TokenPair
	req := map[string]string{"refreshToken": c.Tokens.Model().RefreshToken}
	if err := c.send(ctx, http.MethodPost, "/auth/refresh", nil, req, &pair, false); err != nil {
		return err
	}
	c.Logger.Debug("access token refreshed")
	return c.Tokens.SetTokens(pair.AccessToken, pair.RefreshToken)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out interface{}, withAuth bool) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if withAuth && c.Tokens != nil {
		if token := c.Tokens.Model().AccessToken; token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer res.Body.Close()
	c.Logger.Debug("api call",
		zap.String("method", method),
		zap.String("url", u),
		zap.Int("status", res.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		d, err := io.ReadAll(res.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		httpErr := &apierr.HTTPError{StatusCode: res.StatusCode}
		var eb errorBody
		if jserr := json.Unmarshal(d, &eb); jserr == nil && eb.Error != "" {
			httpErr.Message = eb.Error
		} else {
			httpErr.Message = strings.TrimSpace(string(d))
		}
		return httpErr
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func itoa(n int) string { return strconv.Itoa(n) }
