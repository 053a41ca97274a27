// Package api is the gateway to the comics backend: it turns a
// (path, method, body, auth) request into one HTTP call against the
// configured origin and decodes the JSON reply.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Request struct {
	Method string // defaults to GET
	Path   string
	Query  url.Values
	Body   any

	// Auth marks the request as authenticated. The bearer header is only
	// attached when Token is also non-empty.
	Auth  bool
	Token string
}

type Client struct {
	client  *http.Client
	baseURL string
	log     logrus.FieldLogger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		client:  http.DefaultClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends req and decodes a successful JSON reply into out. out may be nil
// when the caller does not need the body.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Auth && req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	log := c.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"path":       req.Path,
	})

	resp, err := c.client.Do(httpReq)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, req.Path, err)
	}
	defer resp.Body.Close()

	log = log.WithField("status", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		io.Copy(io.Discard, resp.Body)
		log.Warn("non-success response")
		return &StatusError{Method: method, Path: req.Path, Code: resp.StatusCode}
	}
	log.Debug("request completed")

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, req.Path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrMalformedResponse, method, req.Path, err)
	}
	return nil
}

// Get is a shorthand for an unauthenticated GET.
func (c *Client) Get(ctx context.Context, path string, params url.Values, v any) error {
	return c.Do(ctx, Request{Path: path, Query: params}, v)
}

// Fetch downloads a raw resource such as a page image. Absolute URLs are used
// as-is; anything else is resolved against the backend origin.
func (c *Client) Fetch(ctx context.Context, ref string) ([]byte, error) {
	target, err := c.resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid resource %q: %w", ref, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)

	log := c.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     http.MethodGet,
		"url":        target,
	})

	resp, err := c.client.Do(httpReq)
	if err != nil {
		log.WithError(err).Warn("fetch failed")
		return nil, fmt.Errorf("%w: GET %s: %w", ErrRequestFailed, ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		log.WithField("status", resp.StatusCode).Warn("non-success response")
		return nil, &StatusError{Method: http.MethodGet, Path: ref, Code: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrRequestFailed, ref, err)
	}
	log.WithField("bytes", len(raw)).Debug("fetch completed")
	return raw, nil
}

func (c *Client) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return "", err
	}
	return base.ResolveReference(u).String(), nil
}
