// Package store is a typed HTTP client for the Record Store.
package store

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

	"github.com/patel-jhanvi/amrap-gym/internal/api"
	"github.com/patel-jhanvi/amrap-gym/internal/auth"
	"github.com/patel-jhanvi/amrap-gym/internal/gym"
	"github.com/patel-jhanvi/amrap-gym/internal/membership"
	"github.com/patel-jhanvi/amrap-gym/internal/metrics"
	"github.com/patel-jhanvi/amrap-gym/internal/user"
)

const maxErrorBody = 64 << 10

type Client struct {
	baseURL string
	http    *http.Client
	token   string
	timeout time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListGyms(ctx context.Context, search string) ([]gym.Gym, error) {
	var gyms []gym.Gym
	err := c.do(ctx, "list gyms", http.MethodGet, "/gyms"+searchQuery(search), nil, &gyms)
	return gyms, err
}

func (c *Client) GetGym(ctx context.Context, id string) (*gym.Gym, error) {
	var g gym.Gym
	if err := c.do(ctx, "get gym", http.MethodGet, "/gyms/"+url.PathEscape(id), nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *Client) CreateGym(ctx context.Context, req gym.GymRequest) (*gym.Gym, error) {
	if err := validateRequest("create gym", req); err != nil {
		return nil, err
	}
	var g gym.Gym
	if err := c.do(ctx, "create gym", http.MethodPost, "/gyms", req, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *Client) UpdateGym(ctx context.Context, id string, req gym.GymRequest) (*gym.Gym, error) {
	if err := validateRequest("update gym", req); err != nil {
		return nil, err
	}
	var g gym.Gym
	if err := c.do(ctx, "update gym", http.MethodPut, "/gyms/"+url.PathEscape(id), req, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (c *Client) DeleteGym(ctx context.Context, id string) error {
	return c.do(ctx, "delete gym", http.MethodDelete, "/gyms/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListUsers(ctx context.Context, search string) ([]user.User, error) {
	var users []user.User
	err := c.do(ctx, "list users", http.MethodGet, "/users"+searchQuery(search), nil, &users)
	return users, err
}

func (c *Client) GetUser(ctx context.Context, id string) (*user.User, error) {
	var u user.User
	if err := c.do(ctx, "get user", http.MethodGet, "/users/"+url.PathEscape(id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) CreateUser(ctx context.Context, req user.UserRequest) (*user.User, error) {
	if err := validateRequest("create user", req); err != nil {
		return nil, err
	}
	var u user.User
	if err := c.do(ctx, "create user", http.MethodPost, "/users", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, req user.UserRequest) (*user.User, error) {
	if err := validateRequest("update user", req); err != nil {
		return nil, err
	}
	var u user.User
	if err := c.do(ctx, "update user", http.MethodPut, "/users/"+url.PathEscape(id), req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, "delete user", http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}

func (c *Client) GymsOfUser(ctx context.Context, userID string) ([]membership.GymMembership, error) {
	var gyms []membership.GymMembership
	err := c.do(ctx, "list user gyms", http.MethodGet, "/users/"+url.PathEscape(userID)+"/gyms", nil, &gyms)
	return gyms, err
}

func (c *Client) MembersOfGym(ctx context.Context, gymID string) ([]membership.UserMembership, error) {
	var members []membership.UserMembership
	err := c.do(ctx, "list gym members", http.MethodGet, "/gyms/"+url.PathEscape(gymID)+"/users", nil, &members)
	return members, err
}

func (c *Client) AddMembership(ctx context.Context, userID, gymID string) (*membership.Membership, error) {
	var m membership.Membership
	req := membership.MembershipRequest{UserID: userID, GymID: gymID}
	if err := c.do(ctx, "add membership", http.MethodPost, "/memberships", req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) RemoveMembership(ctx context.Context, userID, gymID string) error {
	req := membership.MembershipRequest{UserID: userID, GymID: gymID}
	return c.do(ctx, "remove membership", http.MethodDelete, "/memberships", req, nil)
}

// Login exchanges operator credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*auth.LoginResponse, error) {
	req := auth.LoginRequest{Email: email, Password: password}
	if err := validateRequest("login", req); err != nil {
		return nil, err
	}
	var resp auth.LoginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func searchQuery(search string) string {
	search = strings.TrimSpace(search)
	if search == "" {
		return ""
	}
	return "?" + url.Values{"search": {search}}.Encode()
}

func validateRequest(op string, req interface{}) error {
	if errs := api.ValidateStruct(req); len(errs) > 0 {
		return &Error{Op: op, Message: api.Summary(errs), Kind: ErrValidation}
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		var se *Error
		if errors.As(err, &se) {
			outcome = outcomeLabel(se.Kind)
		}
		metrics.RecordStoreRequest(op, outcome, time.Since(start).Seconds())
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &Error{Op: op, Kind: ErrValidation, Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Op: op, Kind: ErrTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Kind: ErrTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &Error{
			Op:      op,
			Status:  resp.StatusCode,
			Message: errorMessage(resp),
			Kind:    kindForStatus(resp.StatusCode),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Status: resp.StatusCode, Kind: ErrTransport, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// errorMessage prefers the body's "error" field, then "message", then the
// status text.
func errorMessage(resp *http.Response) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if json.Unmarshal(data, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return http.StatusText(resp.StatusCode)
}

func outcomeLabel(kind error) string {
	switch kind {
	case ErrNotFound:
		return "not_found"
	case ErrConflict:
		return "conflict"
	case ErrValidation:
		return "invalid"
	case ErrUnauthorized:
		return "unauthorized"
	default:
		return "transport"
	}
}
