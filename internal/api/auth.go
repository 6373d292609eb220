package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/saadjs/cycle-cli/internal/errors"
	"github.com/saadjs/cycle-cli/internal/model"
)

const (
	loginFailed        = "Login failed"
	registrationFailed = "Registration failed"
	profileFailed      = "Profile verification failed"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token and the user's profile.
func (c *Client) Login(ctx context.Context, username, password string) (model.AuthResponse, error) {
	return c.authenticate(ctx, "/api/login", loginFailed, loginRequest{Username: username, Password: password})
}

// Register creates an account; the service logs the new user in immediately.
func (c *Client) Register(ctx context.Context, username, email, password string) (model.AuthResponse, error) {
	return c.authenticate(ctx, "/api/register", registrationFailed, registerRequest{Username: username, Email: email, Password: password})
}

func (c *Client) authenticate(ctx context.Context, path, fallback string, payload any) (model.AuthResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return model.AuthResponse{}, errors.Wrap(errors.ErrCodeAuthFailed, retryMessage(fallback), fmt.Errorf("marshal credentials: %w", err))
	}
	cl := call{
		method:   http.MethodPost,
		path:     path,
		body:     body,
		code:     errors.ErrCodeAuthFailed,
		fallback: fallback,
	}
	raw, err := c.do(ctx, cl)
	if err != nil {
		return model.AuthResponse{}, err
	}
	var out model.AuthResponse
	if err := decode(cl, raw, &out); err != nil {
		return model.AuthResponse{}, err
	}
	if strings.TrimSpace(out.AccessToken) == "" {
		return model.AuthResponse{}, errors.New(errors.ErrCodeAuthFailed, fallback)
	}
	return out, nil
}

// Profile fetches the user that owns token. It does not consult or
// invalidate Credentials; the caller decides what a failure means.
func (c *Client) Profile(ctx context.Context, token string) (model.User, error) {
	if strings.TrimSpace(token) == "" {
		return model.User{}, errors.NewSessionInvalidError(nil)
	}
	cl := call{
		method:   http.MethodGet,
		path:     "/api/profile",
		token:    token,
		code:     errors.ErrCodeSessionInvalid,
		fallback: profileFailed,
	}
	raw, err := c.do(ctx, cl)
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := decode(cl, raw, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}
