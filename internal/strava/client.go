// Package strava wraps the handful of Strava v3 API calls this service
// needs: the OAuth authorize/exchange pair, activity listing and the
// privatize/rename mutation. Transport errors come back as plain error
// values; an authentication failure on an API call is wrapped in
// ErrUnauthorized so callers can tell a stale token from a flaky network.
package strava

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/iliyamo/privacy2run/internal/model"
)

const (
	defaultAPIBase  = "https://www.strava.com/api/v3"
	defaultAuthURL  = "https://www.strava.com/oauth/authorize"
	defaultTokenURL = "https://www.strava.com/oauth/token"
)

// ErrUnauthorized marks an API response that indicates the bearer token is
// no longer usable (HTTP 401/403).
var ErrUnauthorized = errors.New("strava: unauthorized")

// Client issues authenticated calls against the Strava API. APIBase and
// the OAuth endpoint are exported so tests can point the client at a local
// test server.
type Client struct {
	OAuth   *oauth2.Config
	HTTP    *http.Client
	APIBase string
}

func NewClient(clientID, clientSecret, redirectURL string) *Client {
	return &Client{
		OAuth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"write"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  defaultAuthURL,
				TokenURL: defaultTokenURL,
			},
		},
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		APIBase: defaultAPIBase,
	}
}

// AuthCodeURL returns the authorization URL a browser is redirected to.
func (c *Client) AuthCodeURL(state string) string {
	return c.OAuth.AuthCodeURL(state)
}

// ExchangeCode trades a temporary OAuth code for a write-scope bearer
// token and the owning athlete's identity. Strava returns the athlete
// object alongside the token; its id keys the authorization record and
// its email (when present) becomes the display name.
func (c *Client) ExchangeCode(ctx context.Context, code string) (model.AuthCode, error) {
	tok, err := c.OAuth.Exchange(ctx, code)
	if err != nil {
		return model.AuthCode{}, err
	}

	athlete, _ := tok.Extra("athlete").(map[string]interface{})
	if athlete == nil {
		return model.AuthCode{}, errors.New("strava: token response missing athlete")
	}
	idf, _ := athlete["id"].(float64)
	if idf == 0 {
		return model.AuthCode{}, errors.New("strava: token response missing athlete id")
	}
	name, _ := athlete["email"].(string)
	if name == "" {
		// Newer API versions omit email; fall back to the athlete's name.
		first, _ := athlete["firstname"].(string)
		last, _ := athlete["lastname"].(string)
		name = strings.TrimSpace(first + " " + last)
	}

	return model.AuthCode{
		ID:    int64(idf),
		Token: tok.AccessToken,
		Name:  name,
		Valid: true,
	}, nil
}

// ListActivities fetches the athlete's activity summaries. A positive
// after is passed through as the epoch-seconds lower bound understood by
// the API; zero means no time filter.
func (c *Client) ListActivities(ctx context.Context, token string, after int64) ([]model.Activity, error) {
	url := c.APIBase + "/athlete/activities"
	if after > 0 {
		url += "?after=" + strconv.FormatInt(after, 10)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("list activities (status %d): %w", resp.StatusCode, ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list activities: status %d: %s", resp.StatusCode, string(body))
	}

	var activities []model.Activity
	if err := json.NewDecoder(resp.Body).Decode(&activities); err != nil {
		return nil, fmt.Errorf("list activities: decode: %w", err)
	}
	return activities, nil
}

// UpdateActivity renames an activity and sets its visibility flag.
func (c *Client) UpdateActivity(ctx context.Context, token string, id int64, name string, private bool) error {
	payload, err := json.Marshal(map[string]interface{}{
		"name":    name,
		"private": private,
	})
	if err != nil {
		return fmt.Errorf("update activity %d: %w", id, err)
	}

	url := fmt.Sprintf("%s/activities/%d", c.APIBase, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("update activity %d: %w", id, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("update activity %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("update activity %d (status %d): %w", id, resp.StatusCode, ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("update activity %d: status %d: %s", id, resp.StatusCode, string(body))
	}
	return nil
}
