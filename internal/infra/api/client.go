// Package api implements the backend gateways over the storefront REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"

	domainerrors "storefront/internal/domain/errors"
)

const maxErrorBody = 64 << 10

// TokenSource supplies the bearer token for outgoing requests.
type TokenSource interface {
	AccessToken() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) AccessToken() string { return f() }

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// Tokens are asked in order; the first non-empty token is sent.
	Tokens []TokenSource
	// Transport overrides the HTTP transport, mainly for tests.
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// Client is one caller's connection to the backend. It owns the cookie jar
// carrying the refresh credential and the guest cart id.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	jar        *cookiejar.Jar
	userAgent  string
	tokens     []TokenSource
	logger     *slog.Logger
}

func NewClient(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse api base url")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("api base url must be absolute: %q", opts.BaseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Jar:       jar,
			Transport: opts.Transport,
		},
		jar:       jar,
		userAgent: opts.UserAgent,
		tokens:    opts.Tokens,
		logger:    logger,
	}, nil
}

// Cookies returns the backend cookies currently held.
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.baseURL)
}

// SetCookies loads previously exported cookies.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	if len(cookies) == 0 {
		return
	}
	// The jar only sends cookies whose path covers the request path.
	for _, cookie := range cookies {
		if cookie.Path == "" {
			cookie.Path = "/"
		}
	}
	c.jar.SetCookies(c.baseURL, cookies)
}

func (c *Client) bearer() string {
	for _, src := range c.tokens {
		if src == nil {
			continue
		}
		if token := src.AccessToken(); token != "" {
			return token
		}
	}

	return ""
}

func (c *Client) endpoint(path string, query url.Values) string {
	// path segments arrive escaped; keep them that way on the wire.
	u := *c.baseURL
	u.RawPath = c.baseURL.EscapedPath() + path
	if unescaped, err := url.PathUnescape(u.RawPath); err == nil {
		u.Path = unescaped
	} else {
		u.Path = u.RawPath
		u.RawPath = ""
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	return u.String()
}

// call describes one request.
type call struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	// token overrides the token sources when set.
	token string
}

func jsonCall(method, path string, payload any) (call, error) {
	c := call{method: method, path: path}
	if payload == nil {
		return c, nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return c, errors.WithStack(err)
	}
	c.body = bytes.NewReader(body)
	c.contentType = "application/json"

	return c, nil
}

// do sends the request and decodes a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, req call, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.endpoint(req.path, req.query), req.body)
	if err != nil {
		return errors.WithStack(err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	token := req.token
	if token == "" {
		token = c.bearer()
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("Backend unreachable",
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.Any("error", err),
		)

		return errors.WithStack(domainerrors.ErrNetworkUnreachable.WithCause(err))
	}
	defer resp.Body.Close()

	c.logger.Debug("Backend call",
		slog.String("method", req.method),
		slog.String("path", req.path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.WithStack(decodeError(resp))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.WithStack(domainerrors.ErrMalformedResponse.WithCause(err))
	}

	return nil
}

// errorBody covers the error shapes the backend emits: a flat message, a
// nested error object, and field errors as a list or a map.
type errorBody struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
	Errors  json.RawMessage `json:"errors"`
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return domainerrors.FromStatus(resp.StatusCode, "", nil)
	}

	message := body.Message
	if message == "" && len(body.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		var flat string
		if json.Unmarshal(body.Error, &nested) == nil && nested.Message != "" {
			message = nested.Message
		} else if json.Unmarshal(body.Error, &flat) == nil {
			message = flat
		}
	}

	return domainerrors.FromStatus(resp.StatusCode, message, decodeFieldErrors(body.Errors))
}

func decodeFieldErrors(raw json.RawMessage) []domainerrors.FieldError {
	if len(raw) == 0 {
		return nil
	}

	var list []struct {
		Field   string `json:"field"`
		Path    string `json:"path"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		fields := make([]domainerrors.FieldError, 0, len(list))
		for _, item := range list {
			field := item.Field
			if field == "" {
				field = item.Path
			}
			message := item.Message
			if message == "" {
				message = item.Msg
			}
			fields = append(fields, domainerrors.FieldError{Field: field, Message: message})
		}

		return fields
	}

	var byField map[string]string
	if err := json.Unmarshal(raw, &byField); err == nil {
		fields := make([]domainerrors.FieldError, 0, len(byField))
		for field, message := range byField {
			fields = append(fields, domainerrors.FieldError{Field: field, Message: message})
		}
		sortFields(fields)

		return fields
	}

	return nil
}
