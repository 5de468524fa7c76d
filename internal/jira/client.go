// Package jira is a small REST client for the Jira endpoints the cache
// front-ends: issues, JQL search, field definitions, JQL autocomplete data
// and server info.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/rshade/jirafocus/internal/config"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 30 * time.Second

// MinServerVersion is the oldest Jira Server release the client supports.
const MinServerVersion = ">= 7.0.0"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 * 1024

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the base HTTP client. Authentication is layered
// on top of its transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.base = hc
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client talks to one Jira server. Configure swaps the settings it uses.
type Client struct {
	base   *http.Client
	logger zerolog.Logger

	mu       sync.RWMutex
	settings config.Settings
	http     *http.Client

	cacheMu      sync.RWMutex
	customFields map[string]string
	autocomplete *AutocompleteData
}

// NewClient returns a client for the given settings snapshot.
func NewClient(settings config.Settings, opts ...Option) *Client {
	c := &Client{
		base:         &http.Client{Timeout: DefaultTimeout},
		logger:       zerolog.Nop(),
		customFields: map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Configure(settings)
	return c
}

// Configure replaces the settings snapshot used for new requests.
func (c *Client) Configure(settings config.Settings) {
	hc := c.authenticatedClient(settings)

	c.mu.Lock()
	c.settings = settings.Clone()
	c.http = hc
	c.mu.Unlock()
}

func (c *Client) authenticatedClient(settings config.Settings) *http.Client {
	if settings.AuthenticationType != config.AuthBearerToken {
		return c.base
	}

	base := c.base.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Timeout: c.base.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: settings.BearerToken, TokenType: "Bearer"}),
			Base:   base,
		},
	}
}

// GetIssue fetches one issue by key.
func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	var issue Issue
	if err := c.get(ctx, "/issue/"+url.PathEscape(key), nil, &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

// Search runs a JQL query and returns the first page of up to maxResults issues.
func (c *Client) Search(ctx context.Context, jql string, maxResults int) (*SearchResults, error) {
	q := url.Values{}
	q.Set("jql", jql)
	if maxResults > 0 {
		q.Set("maxResults", strconv.Itoa(maxResults))
	}

	var results SearchResults
	if err := c.get(ctx, "/search", q, &results); err != nil {
		return nil, err
	}
	return &results, nil
}

// ServerInfo fetches the server description.
func (c *Client) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	var info ServerInfo
	if err := c.get(ctx, "/serverInfo", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// CheckCompatibility verifies that info.Version satisfies MinServerVersion.
func CheckCompatibility(info *ServerInfo) error {
	constraint, err := semver.NewConstraint(MinServerVersion)
	if err != nil {
		return err
	}
	v, err := semver.NewVersion(info.Version)
	if err != nil {
		return fmt.Errorf("%w: cannot parse version %q: %w", ErrIncompatibleServer, info.Version, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrIncompatibleServer, v, MinServerVersion)
	}
	return nil
}

// UpdateCustomFieldsCache reloads the custom field name to ID table.
func (c *Client) UpdateCustomFieldsCache(ctx context.Context) error {
	var fields []Field
	if err := c.get(ctx, "/field", nil, &fields); err != nil {
		return err
	}

	table := make(map[string]string)
	for _, f := range fields {
		if f.Custom {
			table[f.Name] = f.ID
		}
	}

	c.cacheMu.Lock()
	c.customFields = table
	c.cacheMu.Unlock()

	c.logger.Debug().Int("custom_fields", len(table)).Msg("custom fields cache updated")
	return nil
}

// UpdateJQLAutoCompleteCache reloads the JQL autocomplete data.
func (c *Client) UpdateJQLAutoCompleteCache(ctx context.Context) error {
	var data AutocompleteData
	if err := c.get(ctx, "/jql/autocompletedata", nil, &data); err != nil {
		return err
	}

	c.cacheMu.Lock()
	c.autocomplete = &data
	c.cacheMu.Unlock()

	c.logger.Debug().Int("fields", len(data.VisibleFieldNames)).Msg("JQL autocomplete cache updated")
	return nil
}

// CustomFields returns a copy of the custom field name to ID table.
func (c *Client) CustomFields() map[string]string {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	out := make(map[string]string, len(c.customFields))
	for k, v := range c.customFields {
		out[k] = v
	}
	return out
}

// AutocompleteData returns the last loaded autocomplete data, or nil.
func (c *Client) AutocompleteData() *AutocompleteData {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()
	return c.autocomplete
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	c.mu.RLock()
	settings := c.settings
	hc := c.http
	c.mu.RUnlock()

	endpoint := settings.APIURL(path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if settings.AuthenticationType == config.AuthBasic {
		req.SetBasicAuth(settings.Username, settings.Password)
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("jira request")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeAPIError(resp)
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var body errorBody
	if json.Unmarshal(data, &body) == nil {
		apiErr.Messages = body.ErrorMessages
		apiErr.Fields = body.Errors
	}
	return apiErr
}
