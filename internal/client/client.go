// Package client is a typed REST client for the launcher API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
)

// APIError is a non-2xx answer from the launcher
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Kind    string `json:"kind"`
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("launcher: %d %s: %s", e.Status, e.Kind, e.Message)
	}
	return fmt.Sprintf("launcher: %d: %s", e.Status, e.Message)
}

// Client talks to one launcher
type Client struct {
	resty *resty.Client
}

// New creates a client for baseURL, e.g. http://localhost:8000
func New(baseURL string) *Client {
	r := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("User-Agent", "AgentOS-Launcherctl/1.0").
		SetError(&APIError{})

	// Only reads and server unavailability are retried
	r.AddRetryCondition(func(resp *resty.Response, err error) bool {
		if resp == nil || resp.Request == nil {
			return false
		}
		return resp.Request.Method == http.MethodGet &&
			(err != nil || resp.StatusCode() >= http.StatusInternalServerError)
	})

	return &Client{resty: r}
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.resty.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", id.NewRequestID().String())
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		apiErr, ok := resp.Error().(*APIError)
		if !ok || apiErr == nil {
			return &APIError{Status: resp.StatusCode(), Message: resp.Status()}
		}
		apiErr.Status = resp.StatusCode()
		return apiErr
	}
	return nil
}

// List returns every managed app
func (c *Client) List(ctx context.Context) ([]types.ManagedApp, error) {
	var out types.ListAppsResponse
	err := check(c.request(ctx).SetResult(&out).Get("/apps"))
	return out.Apps, err
}

// Get returns one managed app
func (c *Client) Get(ctx context.Context, appID types.AppIdentity) (types.ManagedApp, error) {
	var out types.ManagedApp
	err := check(c.request(ctx).SetResult(&out).Get("/apps/" + url.PathEscape(appID.String())))
	return out, err
}

// Add adds the binary at path
func (c *Client) Add(ctx context.Context, path string, safeDriveAccess bool) (types.ManagedApp, error) {
	var out types.ManagedApp
	err := check(c.request(ctx).
		SetBody(types.AddAppRequest{AbsolutePath: path, SafeDriveAccess: safeDriveAccess}).
		SetResult(&out).
		Post("/apps"))
	return out, err
}

// Remove drops one reference
func (c *Client) Remove(ctx context.Context, appID types.AppIdentity) (types.RemoveAppResponse, error) {
	var out types.RemoveAppResponse
	err := check(c.request(ctx).SetResult(&out).Delete("/apps/" + url.PathEscape(appID.String())))
	return out, err
}

// Activate launches an app
func (c *Client) Activate(ctx context.Context, appID types.AppIdentity) (types.ManagedApp, error) {
	var out types.ManagedApp
	err := check(c.request(ctx).SetResult(&out).Post("/apps/" + url.PathEscape(appID.String()) + "/activate"))
	return out, err
}

// Modify applies a partial settings update
func (c *Client) Modify(ctx context.Context, appID types.AppIdentity, req types.ModifyAppRequest) (types.ManagedApp, error) {
	var out types.ManagedApp
	err := check(c.request(ctx).SetBody(req).SetResult(&out).Patch("/apps/" + url.PathEscape(appID.String())))
	return out, err
}

// Health returns the raw health document
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := check(c.request(ctx).SetResult(&out).Get("/health"))
	return out, err
}
