// Package client calls the roster service over REST and normalizes what it returns.
package client

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
	"time"

	"hospital-roster/internal/roster"
)

// DefaultTimeout bounds every call made by a Client
const DefaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithTimeout overrides the per-call timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

// do sends one request and returns the envelope's data on a 2xx response
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, &APIError{StatusCode: http.StatusUnauthorized, Message: err.Error()}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: genericMessage(resp.StatusCode)}
		if decodeErr == nil {
			if msg := firstNonEmpty(env.Error, env.Message); msg != "" {
				apiErr.Message = msg
			}
			apiErr.Fields = env.Fields
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if env.Data == nil {
		return raw, nil
	}
	return env.Data, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func hospitalPath(id string, rest ...string) string {
	p := "/api/hospitals/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

// Hospitals fetches the roster and normalizes every record.
// Criteria, when non-zero, are sent as query parameters for the server to apply.
func (c *Client) Hospitals(ctx context.Context, criteria roster.Criteria) ([]roster.Result, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/hospitals", criteriaQuery(criteria), nil)
	if err != nil {
		return nil, err
	}
	return roster.NormalizeJSON(data)
}

func criteriaQuery(c roster.Criteria) url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("search", c.SearchTerm)
	set("type", c.Type)
	set("region", c.Region)
	set("status", c.Status)
	set("admin", c.AdminFilter)
	if c.Capacity != nil {
		q.Set("minBeds", fmt.Sprint(c.Capacity.Min))
		if c.Capacity.Max != nil {
			q.Set("maxBeds", fmt.Sprint(*c.Capacity.Max))
		}
	}
	return q
}

// Hospital fetches one hospital
func (c *Client) Hospital(ctx context.Context, id string) (roster.Result, error) {
	data, err := c.do(ctx, http.MethodGet, hospitalPath(id), nil, nil)
	if err != nil {
		return roster.Result{}, err
	}
	results, err := roster.NormalizeJSON(append(append([]byte("["), data...), ']'))
	if err != nil {
		return roster.Result{}, err
	}
	if len(results) == 0 {
		return roster.Result{}, errors.New("decode hospital: payload is not an object")
	}
	return results[0], nil
}

// HospitalAdmins fetches a hospital's admins through the canonical admin adapter
func (c *Client) HospitalAdmins(ctx context.Context, id string) ([]roster.Admin, error) {
	data, err := c.do(ctx, http.MethodGet, hospitalPath(id, "admins"), nil, nil)
	if err != nil {
		return nil, err
	}

	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode admins: %w", err)
	}
	if m, ok := root.(map[string]any); ok {
		root = m["admins"]
	}
	return roster.AdminsFromList(root), nil
}

// CreateHospitalRequest is the body of a create call
type CreateHospitalRequest struct {
	Fields           map[string]any
	AdminFirstName   string
	AdminLastName    string
	AdminEmail       string
	AdminPhone       string
	AdminPassword    string
	AdditionalAdmins []roster.DraftAdmin
}

func (r CreateHospitalRequest) body() map[string]any {
	body := make(map[string]any, len(r.Fields)+6)
	for k, v := range r.Fields {
		body[k] = v
	}
	body["adminFirstName"] = r.AdminFirstName
	body["adminLastName"] = r.AdminLastName
	body["adminEmail"] = r.AdminEmail
	body["adminPhone"] = r.AdminPhone
	body["adminPassword"] = r.AdminPassword
	drafts := r.AdditionalAdmins
	if drafts == nil {
		drafts = []roster.DraftAdmin{}
	}
	body["additionalAdmins"] = drafts
	return body
}

// AddedAdmin is the server's report for one added admin
type AddedAdmin struct {
	TempID            int64  `json:"tempId"`
	ID                string `json:"id"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Email             string `json:"email"`
	PasswordGenerated bool   `json:"passwordGenerated"`
	Error             string `json:"error"`
}

// AddedAdminsCount separates accepted and rejected admins of one save
type AddedAdminsCount struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// SaveResult is returned by create and update calls
type SaveResult struct {
	Message             string           `json:"message"`
	Hospital            roster.Hospital  `json:"hospital"`
	AddedAdmins         []AddedAdmin     `json:"addedAdmins"`
	AddedAdminsCount    AddedAdminsCount `json:"addedAdminsCount"`
	RemovedAdmins       int64            `json:"removedAdmins"`
	PrimaryAdminUpdated bool             `json:"primaryAdminUpdated"`
}

// FailedAdmins returns the added admins the server rejected
func (r SaveResult) FailedAdmins() []AddedAdmin {
	var out []AddedAdmin
	for _, a := range r.AddedAdmins {
		if a.Error != "" {
			out = append(out, a)
		}
	}
	return out
}

// CreateHospital creates a hospital with its admins
func (c *Client) CreateHospital(ctx context.Context, req CreateHospitalRequest) (*SaveResult, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/hospitals", nil, req.body())
	if err != nil {
		return nil, err
	}
	return decodeSave(data)
}

// UpdateHospital submits changed fields merged with an admin reconciliation payload
func (c *Client) UpdateHospital(ctx context.Context, id string, fields map[string]any, payload *roster.ReconciliationPayload) (*SaveResult, error) {
	body := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		body[k] = v
	}
	if payload != nil {
		body["additionalAdmins"] = payload.AdditionalAdmins
		body["adminsToRemove"] = payload.AdminsToRemove
		body["primaryAdminUpdate"] = payload.PrimaryAdminUpdate
	}

	data, err := c.do(ctx, http.MethodPut, hospitalPath(id), nil, body)
	if err != nil {
		return nil, err
	}
	return decodeSave(data)
}

func decodeSave(data json.RawMessage) (*SaveResult, error) {
	var res SaveResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode save result: %w", err)
	}
	return &res, nil
}

// ChangeStatus moves a hospital to another status
func (c *Client) ChangeStatus(ctx context.Context, id string, status roster.Status) error {
	_, err := c.do(ctx, http.MethodPut, hospitalPath(id, "status"), nil, map[string]string{"status": string(status)})
	return err
}

// DeleteHospital deletes a hospital
func (c *Client) DeleteHospital(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, hospitalPath(id), nil, nil)
	return err
}

// Stats fetches the roster summary
func (c *Client) Stats(ctx context.Context) (roster.Stats, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/hospitals/stats", nil, nil)
	if err != nil {
		return roster.Stats{}, err
	}
	var stats roster.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return roster.Stats{}, fmt.Errorf("decode stats: %w", err)
	}
	return stats, nil
}
