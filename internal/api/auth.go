package api

import (
	"context"

	"github.com/foodbridge/cli/internal/model"
)

// Credentials are the login form fields.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration are the sign-up form fields.
type Registration struct {
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Password     string         `json:"password"`
	Phone        string         `json:"phone,omitempty"`
	Organization string         `json:"organization,omitempty"`
	Role         model.Role     `json:"role"`
	Location     model.Location `json:"location"`
}

// AuthResponse is the body returned by login and register: the bearer
// token paired with the authenticated profile.
type AuthResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// AuthAPI groups the authentication endpoints.
type AuthAPI struct {
	client *Client
}

// NewAuthAPI creates an AuthAPI backed by the given client.
func NewAuthAPI(c *Client) *AuthAPI {
	return &AuthAPI{client: c}
}

// Login exchanges credentials for a token and profile.
func (a *AuthAPI) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := a.client.Post(ctx, "/auth/login", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates a new account and returns its token and profile.
func (a *AuthAPI) Register(ctx context.Context, reg Registration) (*AuthResponse, error) {
	var resp AuthResponse
	if err := a.client.Post(ctx, "/auth/register", reg, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the profile of the account the installed token belongs to.
func (a *AuthAPI) Me(ctx context.Context) (*model.User, error) {
	var resp struct {
		User model.User `json:"user"`
	}
	if err := a.client.Get(ctx, "/auth/me", &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// UpdateLocation stores a new registered position for the account.
func (a *AuthAPI) UpdateLocation(ctx context.Context, loc model.Location) error {
	return a.client.Put(ctx, "/auth/update-location", loc, nil)
}
