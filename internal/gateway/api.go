package gateway

import (
	"context"
	"net/http"

	"github.com/luodachuixg/nola-console/internal/model"
)

// UpdateUserRequest carries the editable admin profile fields.
type UpdateUserRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Description string `json:"description,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

// Login authenticates against the platform and, on success, installs
// the returned user (and its token) as the current session.
func (c *Client) Login(ctx context.Context, username, password string) (*model.User, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}
	var user model.User
	if err := c.do(ctx, http.MethodPost, "/admin/user/login", body, &user); err != nil {
		return nil, err
	}
	if err := c.sess.SetUser(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout clears the local session. The platform has no server-side
// logout endpoint; dropping the persisted token is the whole operation.
func (c *Client) Logout() error {
	return c.sess.SetUser(nil)
}

// GetUserInfo fetches the profile of the currently authenticated admin.
func (c *Client) GetUserInfo(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/admin/user", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserInfo updates the admin profile.
func (c *Client) UpdateUserInfo(ctx context.Context, req *UpdateUserRequest) error {
	return c.do(ctx, http.MethodPut, "/admin/user", req, nil)
}

// UpdateUserPassword changes the admin password. The server invalidates
// the session afterwards, so callers should expect to log in again.
func (c *Client) UpdateUserPassword(ctx context.Context, password string) error {
	body := map[string]string{"password": password}
	return c.do(ctx, http.MethodPut, "/admin/user/password", body, nil)
}
