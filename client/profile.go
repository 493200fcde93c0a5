package client

import (
	"context"
	"errors"

	model "reuse-market/internal/models"
)

// ErrSignedOut tells the caller to route the viewer to sign-in.
var ErrSignedOut = errors.New("viewer is not signed in")

// ProfileView fetches the signed-in user's own record.
type ProfileView struct {
	client  *Client
	session *Session
}

// NewProfileView creates a ProfileView for the given viewer.
func NewProfileView(c *Client, session *Session) *ProfileView {
	return &ProfileView{client: c, session: session}
}

// Load returns the viewer's profile, or ErrSignedOut for an anonymous
// session.
func (p *ProfileView) Load(ctx context.Context) (model.User, error) {
	if p.session.Ready() && !p.session.SignedIn() {
		return model.User{}, ErrSignedOut
	}
	return p.client.GetUser(ctx, p.session.UserID())
}
