package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Websitedemo13/s17-trading-go/internal/model"
)

// Client is the remote data gateway to the backend-as-a-service: auth,
// row reads/writes and the insights proxy all go through here. It holds
// no state beyond the token source; callers own retries and fallbacks.
type Client struct {
	baseURL string
	token   func() string
	http    *http.Client
}

// APIError carries the backend's error text so user-facing flows can
// surface it verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient takes the backend base URL (no trailing slash) and a token
// source consulted per request. token may return "" before sign-in.
func NewClient(baseURL string, token func() string) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// --- auth ---

func (c *Client) SignUp(ctx context.Context, req *model.SignUpRequest) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/signup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	req := model.SignInRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/signin", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	req := model.RefreshRequest{RefreshToken: refreshToken}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SignOut(ctx context.Context, refreshToken string) error {
	req := model.SignOutRequest{RefreshToken: refreshToken}
	return c.do(ctx, http.MethodPost, "/api/v1/auth/signout", &req, nil)
}

// --- profile ---

func (c *Client) Profile(ctx context.Context) (*model.Profile, error) {
	var p model.Profile
	if err := c.do(ctx, http.MethodGet, "/api/v1/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req *model.UpdateProfileRequest) (*model.Profile, error) {
	var p model.Profile
	if err := c.do(ctx, http.MethodPut, "/api/v1/profile", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, newPassword string) error {
	req := model.ChangePasswordRequest{CurrentPassword: current, NewPassword: newPassword}
	return c.do(ctx, http.MethodPut, "/api/v1/profile/password", &req, nil)
}

// --- teams ---

func (c *Client) ListTeams(ctx context.Context) ([]model.Team, error) {
	var resp struct {
		Teams []model.Team `json:"teams"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/teams/", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Teams, nil
}

func (c *Client) CreateTeam(ctx context.Context, req *model.CreateTeamRequest) (*model.Team, error) {
	var team model.Team
	if err := c.do(ctx, http.MethodPost, "/api/v1/teams/", req, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

func (c *Client) TeamMembers(ctx context.Context, teamID string) ([]model.TeamMember, error) {
	var resp struct {
		Members []model.TeamMember `json:"members"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/teams/"+teamID+"/members", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Members, nil
}

func (c *Client) JoinTeam(ctx context.Context, teamID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/teams/"+teamID+"/join", nil, nil)
}

func (c *Client) LeaveTeam(ctx context.Context, teamID string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/teams/"+teamID+"/leave", nil, nil)
}

// --- chat ---

func (c *Client) History(ctx context.Context, teamID string, limit int) ([]model.ChatMessage, error) {
	var resp struct {
		Messages []model.ChatMessage `json:"messages"`
	}
	path := fmt.Sprintf("/api/v1/teams/%s/messages?limit=%d", teamID, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (c *Client) SendMessage(ctx context.Context, teamID string, req *model.SendMessageRequest) (*model.ChatMessage, error) {
	var msg model.ChatMessage
	if err := c.do(ctx, http.MethodPost, "/api/v1/teams/"+teamID+"/messages", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// --- notifications ---

func (c *Client) Notifications(ctx context.Context, limit int) ([]model.Notification, error) {
	var resp struct {
		Notifications []model.Notification `json:"notifications"`
	}
	path := fmt.Sprintf("/api/v1/notifications?limit=%d", limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/api/v1/notifications/"+id+"/read", nil, nil)
}

// do issues one JSON request. Non-2xx responses become an *APIError
// carrying the backend's error text.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t := c.token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := resp.Status
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
