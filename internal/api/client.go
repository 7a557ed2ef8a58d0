package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"hub/internal/logs"
	"hub/internal/models"
	"hub/internal/session"
)

const tokenPath = "/token/"

// Client talks JSON to the hub's REST API. Every request except login
// carries the session's bearer token.
type Client struct {
	baseURL string
	session *session.Session
	authed  *http.Client
	plain   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient uses base for transport; the bearer token is layered on top.
func WithHTTPClient(base *http.Client) Option {
	return func(c *Client) {
		c.plain = base
	}
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, sess *session.Session, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: sess,
		plain:   &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.plain.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	authed := *c.plain
	authed.Transport = &oauth2.Transport{Source: sess, Base: base}
	c.authed = &authed

	return c
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *session.Session {
	return c.session
}

// Login exchanges credentials for a token pair and stores it in the session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	body := map[string]string{"username": username, "password": password}

	err := c.send(ctx, c.plain, http.MethodPost, tokenPath, nil, body, &tokens)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return ErrInvalidCredentials
		}
		return err
	}
	if tokens.Access == "" {
		return fmt.Errorf("login: response carried no access token")
	}

	if err := c.session.Set(ctx, tokens.Access, tokens.Refresh); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	logs.Logger.WithField("user", username).Info("Logged in")
	return nil
}

// Logout clears the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Clear(ctx)
}

// Me returns the logged-in user.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var u models.User
	err := c.Do(ctx, http.MethodGet, "/users/me/", nil, nil, &u)
	return u, err
}

// Do issues an authenticated request. body and out may be nil. A 401
// clears the session and returns ErrUnauthorized.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	err := c.send(ctx, c.authed, method, path, query, body, out)
	if err == nil {
		return nil
	}

	var apiErr *Error
	unauthorized := errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
	if !unauthorized && !errors.Is(err, session.ErrNotAuthenticated) {
		return err
	}

	if clearErr := c.session.Clear(ctx); clearErr != nil {
		logs.Logger.WithError(clearErr).Warn("Failed to clear session after 401")
	}
	return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
}

func (c *Client) send(ctx context.Context, hc *http.Client, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := logs.Logger.WithFields(logrus.Fields{"method": method, "path": path})

	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			return err
		}
		log.WithError(err).Debug("Request failed without response")
		return &NetworkError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Endpoint: path, Err: err}
	}
	log.WithField("status", resp.StatusCode).Debug("Request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Method:     method,
			Endpoint:   path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
