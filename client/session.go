package client

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Session holds the viewer's identity for the lifetime of the app. It is
// created once at startup and injected into every consumer; there is no
// package-level current session.
type Session struct {
	ready  bool
	token  string
	userID string
}

// credentialBlob is the persisted auth file layout: an access token plus
// the user record it was minted for.
type credentialBlob struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID string `json:"id"`
	} `json:"user"`
}

// LoadSession reads the credential file for the given project from dir.
// Any failure (missing file, bad JSON, empty token) yields a ready
// anonymous session rather than an error: a signed-out app is a working
// app.
func LoadSession(dir, projectRef string) *Session {
	s := &Session{ready: true}

	raw, err := os.ReadFile(filepath.Join(dir, "sb-"+projectRef+"-auth-token.json"))
	if err != nil {
		return s
	}

	var blob credentialBlob
	if err := json.Unmarshal(raw, &blob); err != nil || blob.AccessToken == "" || blob.User.ID == "" {
		return s
	}

	s.token = blob.AccessToken
	s.userID = blob.User.ID
	return s
}

// NewSession builds a session directly from a token and user id. An empty
// token yields an anonymous session.
func NewSession(token, userID string) *Session {
	return &Session{ready: true, token: token, userID: userID}
}

// Ready reports whether the session has finished loading.
func (s *Session) Ready() bool { return s != nil && s.ready }

// SignedIn reports whether the session carries a usable identity.
func (s *Session) SignedIn() bool { return s != nil && s.token != "" && s.userID != "" }

// Token returns the bearer token, or "" for anonymous sessions.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.token
}

// UserID returns the signed-in user's id, or "" for anonymous sessions.
func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	return s.userID
}
