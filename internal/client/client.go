package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"dit/internal/config"
)

const (
	defaultTimeout = 10 * time.Second
	followTimeout  = 40 * time.Second
	maxBodyBytes   = 1 << 20
)

// ErrDaemonUnavailable reports that no daemon answered at the configured address.
var ErrDaemonUnavailable = errors.New("dit daemon is not running")

// Response is a raw JSON reply from the daemon.
type Response struct {
	StatusCode int
	Raw        []byte
}

// OK reports the daemon's "ok" field.
func (r Response) OK() bool {
	return gjson.GetBytes(r.Raw, "ok").Bool()
}

// ErrorCode returns the daemon's error code, or "" on success.
func (r Response) ErrorCode() string {
	return gjson.GetBytes(r.Raw, "error").String()
}

// Get looks up a gjson path in the response.
func (r Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Raw, path)
}

// Pretty returns the response indented for terminals.
func (r Response) Pretty() string {
	return string(pretty.PrettyOptions(r.Raw, &pretty.Options{Width: 80, Indent: "  "}))
}

// Color returns the pretty response with ANSI colouring.
func (r Response) Color() string {
	return string(pretty.Color(pretty.PrettyOptions(r.Raw, &pretty.Options{Width: 80, Indent: "  "}), nil))
}

// Client calls the daemon HTTP API.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// New builds a client for baseURL ("http://host:port" or a bare "host:port").
func New(baseURL string, opts ...Option) (*Client, error) {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		return nil, errors.New("daemon address is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse daemon address: %w", err)
	}
	c := &Client{base: base, http: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FromConfig builds a client for the configured bind address and token.
func FromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	bind := cfg.Paths.APIBind
	if host, port, err := net.SplitHostPort(bind); err == nil && (host == "" || host == "0.0.0.0" || host == "::") {
		bind = net.JoinHostPort("127.0.0.1", port)
	}
	return New(bind, append([]Option{WithToken(cfg.Paths.APIToken)}, opts...)...)
}

// Ping checks that the daemon answers.
func (c *Client) Ping(ctx context.Context) (Response, error) {
	return c.get(ctx, "/ping", nil)
}

// Status returns busy, queue length, last event, and speed.
func (c *Client) Status(ctx context.Context) (Response, error) {
	return c.get(ctx, "/status", nil)
}

// Send queues text for transmission. A speed of 0 uses the daemon's global speed.
func (c *Client) Send(ctx context.Context, text string, speed int) (Response, error) {
	query := url.Values{"data": {text}}
	if speed > 0 {
		query.Set("speed", strconv.Itoa(speed))
	}
	return c.get(ctx, "/morse", query)
}

// Speed reads the global speed, or sets it when value is non-nil.
func (c *Client) Speed(ctx context.Context, value *string) (Response, error) {
	var query url.Values
	if value != nil {
		query = url.Values{"value": {*value}}
	}
	return c.get(ctx, "/speed", query)
}

// Render asks the daemon for its rendering of text.
func (c *Client) Render(ctx context.Context, text string) (Response, error) {
	return c.get(ctx, "/render", url.Values{"text": {text}})
}

// Logs fetches log events after since. With follow set the daemon waits for new events.
func (c *Client) Logs(ctx context.Context, since uint64, limit int, follow bool) (Response, error) {
	query := url.Values{}
	if since > 0 {
		query.Set("since", strconv.FormatUint(since, 10))
	} else if !follow {
		query.Set("tail", "1")
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if follow {
		query.Set("follow", "1")
		ctx, cancel := context.WithTimeout(ctx, followTimeout)
		defer cancel()
		return c.get(ctx, "/api/logs", query)
	}
	return c.get(ctx, "/api/logs", query)
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (Response, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}
	target := c.base.JoinPath(path)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) && opErr.Op == "dial" {
			return Response{}, fmt.Errorf("%w at %s", ErrDaemonUnavailable, c.base.Host)
		}
		return Response{}, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Response{}, fmt.Errorf("read %s response: %w", path, err)
	}
	out := Response{StatusCode: resp.StatusCode, Raw: body}
	if !gjson.ValidBytes(body) {
		return out, fmt.Errorf("%s returned %d with non-JSON body", path, resp.StatusCode)
	}
	return out, nil
}
