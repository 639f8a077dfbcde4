// Package sensibo is a small client for the Sensibo cloud API, restricted to
// the single pod a bridge instance controls.
package sensibo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://home.sensibo.com/api/v2"

// Logger is satisfied by the hap loggers and by *log.Logger
type Logger interface {
	Printf(format string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...interface{}) {}

// Client talks to one pod. It holds no device state and performs no retries.
type Client struct {
	baseURL string
	id      string
	apiKey  string
	hc      *http.Client
	logger  Logger
}

type Option func(*Client)

// WithBaseURL points the client somewhere other than home.sensibo.com
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets the transport; timeouts belong here
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.hc = hc
	}
}

// WithLogger receives raw request/response lines
func WithLogger(l Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func New(id, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		id:      id,
		apiKey:  apiKey,
		hc:      &http.Client{Timeout: 10 * time.Second},
		logger:  nopLogger{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ID is the pod identifier this client is bound to
func (c *Client) ID() string {
	return c.id
}

// Fetch reads the pod, restricted to the requested groups. No groups means all.
func (c *Client) Fetch(ctx context.Context, groups ...FieldGroup) (*Pod, error) {
	fields := string(GroupAll)
	if len(groups) > 0 {
		s := make([]string, 0, len(groups))
		for _, g := range groups {
			s = append(s, string(g))
		}
		fields = strings.Join(s, ",")
	}

	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("fields", fields)
	u := fmt.Sprintf("%s/pods/%s?%s", c.baseURL, url.PathEscape(c.id), q.Encode())

	var pod Pod
	if err := c.do(ctx, "fetch", http.MethodGet, u, nil, &pod); err != nil {
		return nil, err
	}
	return &pod, nil
}

// PatchField writes exactly one acState field
func (c *Client) PatchField(ctx context.Context, field Field, value interface{}) (*ChangeResult, error) {
	body, err := json.Marshal(map[string]interface{}{"newValue": value})
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/pods/%s/acStates/%s?%s", c.baseURL, url.PathEscape(c.id), url.PathEscape(string(field)), c.keyQuery())

	var res ChangeResult
	if err := c.do(ctx, "patch "+string(field), http.MethodPatch, u, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// BulkUpdate writes several fields in one call. The vendor does not promise
// all-or-nothing, callers must tolerate some fields having been applied on error.
func (c *Client) BulkUpdate(ctx context.Context, fields map[Field]interface{}) (*ChangeResult, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/pods/%s/acStates?%s", c.baseURL, url.PathEscape(c.id), c.keyQuery())

	var res ChangeResult
	if err := c.do(ctx, "update", http.MethodPost, u, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) keyQuery() string {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	return q.Encode()
}

func (c *Client) do(ctx context.Context, op, method, u string, body []byte, out interface{}) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
		c.logger.Printf("sensibo %s %s", op, body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	c.logger.Printf("sensibo %s response (%d): %s", op, resp.StatusCode, raw)

	env := envelope[json.RawMessage]{}
	if err := json.Unmarshal(raw, &env); err != nil {
		return &RemoteStatusError{Op: op, HTTPStatus: resp.StatusCode, Reason: err.Error()}
	}
	if env.Status != statusSuccess {
		reason := env.Reason
		if reason == "" {
			reason = env.Message
		}
		return &RemoteStatusError{Op: op, Status: env.Status, HTTPStatus: resp.StatusCode, Reason: reason}
	}

	if out == nil || len(env.Result) == 0 || string(env.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return &RemoteStatusError{Op: op, Status: env.Status, HTTPStatus: resp.StatusCode, Reason: err.Error()}
	}
	return nil
}
