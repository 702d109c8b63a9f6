package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// envelope is the response of the challenge endpoints.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type apiError struct {
	Status int
	Code   string `json:"error"`
}

func (e *apiError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Code)
}

type registered struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type session struct {
	Token     string    `json:"token"`
	Email     string    `json:"umail"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type client struct {
	r *resty.Client
}

func newClient(baseURL string, timeout time.Duration) *client {
	r := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second)
	r.AddRetryCondition(retryCondition)
	return &client{r: r}
}

// retryCondition retries transport errors and gateway failures of idempotent
// requests. A POST may already have been applied when the reply was lost.
func retryCondition(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || !idempotent(r.Request.Method) {
		return false
	}
	if err != nil {
		return true
	}
	switch r.StatusCode() {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func (c *client) req(ctx context.Context, tok string) *resty.Request {
	r := c.r.R().SetContext(ctx)
	if tok != "" {
		r.SetAuthToken(tok)
	}
	return r
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		e := &apiError{Status: resp.StatusCode()}
		_ = json.Unmarshal(resp.Body(), e)
		return e
	}
	return nil
}

func (c *client) register(ctx context.Context, email, password string) (registered, error) {
	var out struct {
		Data registered `json:"data"`
	}
	resp, err := c.req(ctx, "").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/api/Users")
	return out.Data, check(resp, err)
}

func (c *client) login(ctx context.Context, email, password string) (session, error) {
	var out struct {
		Authentication session `json:"authentication"`
	}
	resp, err := c.req(ctx, "").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/rest/user/login")
	return out.Authentication, check(resp, err)
}

func (c *client) logout(ctx context.Context, tok string) error {
	return check(c.req(ctx, tok).Get("/rest/user/logout"))
}

func (c *client) users(ctx context.Context, tok string) ([]json.RawMessage, error) {
	var out struct {
		Data []json.RawMessage `json:"data"`
	}
	resp, err := c.req(ctx, tok).SetResult(&out).Get("/rest/user/authentication-details")
	return out.Data, check(resp, err)
}

// submitKey returns the server's verdict; a rejected key is not an error.
func (c *client) submitKey(ctx context.Context, key string) (envelope, error) {
	var out envelope
	resp, err := c.req(ctx, "").
		SetBody(map[string]string{"privateKey": key}).
		SetResult(&out).
		SetError(&out).
		Post("/rest/web3/submitKey")
	if err == nil && resp.StatusCode() == http.StatusUnauthorized {
		return out, nil
	}
	return out, check(resp, err)
}

func (c *client) nftStatus(ctx context.Context) (bool, error) {
	var out struct {
		Status bool `json:"status"`
	}
	resp, err := c.req(ctx, "").SetResult(&out).Get("/rest/web3/nftUnlocked")
	return out.Status, check(resp, err)
}

func (c *client) mintListen(ctx context.Context) (envelope, error) {
	var out envelope
	resp, err := c.req(ctx, "").SetResult(&out).Get("/rest/web3/nftMintListen")
	return out, check(resp, err)
}

func (c *client) walletVerify(ctx context.Context, address string) (envelope, error) {
	var out envelope
	resp, err := c.req(ctx, "").
		SetBody(map[string]string{"walletAddress": address}).
		SetResult(&out).
		Post("/rest/web3/walletNFTVerify")
	return out, check(resp, err)
}

func (c *client) walletWatch(ctx context.Context, address string) (envelope, error) {
	var out envelope
	resp, err := c.req(ctx, "").
		SetBody(map[string]string{"walletAddress": address}).
		SetResult(&out).
		Post("/rest/web3/walletExploitAddress")
	return out, check(resp, err)
}
