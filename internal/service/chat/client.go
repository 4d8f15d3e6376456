package chat

import (
	"strings"
	"sync"
)

// User is the authenticated identity as reported by the auth layer.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
}

// Client follows one app instance through auth transitions and keeps its
// session bound to the signed-in user.
type Client struct {
	manager *Manager

	mu   sync.Mutex
	user *User
}

// NewClient creates a signed-out client.
func NewClient(manager *Manager) *Client {
	return &Client{manager: manager}
}

// OnAuthChange applies an auth transition. A nil user signs out and discards
// the session; a user signs in, reusing the session of the same identity.
func (c *Client) OnAuthChange(user *User) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if user == nil {
		if c.user != nil {
			c.manager.Close(c.user.ID)
			c.user = nil
		}
		return nil, nil
	}

	id := strings.TrimSpace(user.ID)
	if id == "" {
		return nil, ErrNotAuthenticated
	}

	if c.user != nil && c.user.ID != id {
		c.manager.Close(c.user.ID)
	}
	c.user = &User{ID: id, DisplayName: user.DisplayName}
	return c.manager.Open(id)
}

// User returns the signed-in user, or nil.
func (c *Client) User() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// Session returns the signed-in user's session, or nil.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	session, _ := c.manager.Current(c.user.ID)
	return session
}

// ClearSession starts a new conversation for the signed-in user.
func (c *Client) ClearSession() (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil, ErrNotAuthenticated
	}
	return c.manager.ClearSession(c.user.ID)
}
