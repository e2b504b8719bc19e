package client

import (
	"context"
	"net/http"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Token struct {
	AccessToken string `json:"access_token"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

// Login exchanges email and password for an access token
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	token := Token{}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", LoginRequest{Email: email, Password: password}, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	res := RegisterResponse{}
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
