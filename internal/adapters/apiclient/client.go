// Package apiclient talks to the meeting server's REST API.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/semitha-uni-west/google-beet/internal/domain"
)

// apiError is the server's error body.
type apiError struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

// Client wraps a resty client bound to one server and one identity token.
type Client struct {
	http *resty.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL, token string, timeout time.Duration) *Client {
	c := &Client{token: token}
	c.http = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			if t := c.Token(); t != "" {
				r.SetAuthToken(t)
			}
			return nil
		})
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(t string) {
	c.mu.Lock()
	c.token = t
	c.mu.Unlock()
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx).SetError(&apiError{})
}

// check maps transport failures and HTTP statuses onto domain errors.
func check(op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !resp.IsError() {
		return nil
	}
	msg := resp.Status()
	if e, ok := resp.Error().(*apiError); ok && e.Error != "" {
		msg = e.Error
	}
	var kind error
	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		kind = domain.ErrAuthenticationRequired
	case http.StatusForbidden:
		kind = domain.ErrForbidden
	case http.StatusNotFound:
		kind = domain.ErrNotFound
	case http.StatusConflict:
		kind = domain.ErrConflict
	case http.StatusBadRequest:
		kind = domain.ErrInvalidCode
	default:
		kind = errors.New("unexpected status")
	}
	return fmt.Errorf("%s: %w (%d %s)", op, kind, resp.StatusCode(), msg)
}
