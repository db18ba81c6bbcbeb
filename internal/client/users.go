package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/vyrodovalexey/shoplist/internal/model"
)

// GetUser returns a user by id.
func (c *Client) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if _, err := c.do(ctx, request{
		message: "failed to fetch user",
		method:  http.MethodGet,
		path:    "/users/" + url.PathEscape(id),
	}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail returns the user registered with email, or nil when there is none.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var users []model.User
	if _, err := c.do(ctx, request{
		message: "failed to fetch user",
		method:  http.MethodGet,
		path:    "/users",
		query:   url.Values{"email": {email}},
	}, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// CreateUser registers a new account. A missing id or createdAt is filled in here.
func (c *Client) CreateUser(ctx context.Context, dto model.CreateUserDto) (*model.User, error) {
	if dto.ID == "" {
		dto.ID = uuid.NewString()
	}
	if dto.CreatedAt.IsZero() {
		dto.CreatedAt = c.now()
	}

	var user model.User
	if _, err := c.do(ctx, request{
		message: "failed to create user",
		method:  http.MethodPost,
		path:    "/users",
		body:    dto,
	}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser replaces the profile fields of a user.
func (c *Client) UpdateUser(ctx context.Context, id string, dto model.UpdateUserDto) (*model.User, error) {
	var user model.User
	if _, err := c.do(ctx, request{
		message: "failed to update user",
		method:  http.MethodPut,
		path:    "/users/" + url.PathEscape(id),
		body:    dto,
	}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login checks email and password and returns the signed-in user.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	var user model.User
	if _, err := c.do(ctx, request{
		message: "invalid email or password",
		method:  http.MethodPost,
		path:    "/auth/login",
		body:    model.LoginRequest{Email: email, Password: password},
	}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
