// Package invitelink signs and verifies the (project, user) pair embedded in
// invitation emails so the accept page cannot be pointed at someone else's
// invitation by editing the URL.
package invitelink

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/securecookie"
)

const cookieName = "showmate-invite"

var ErrInvalidLink = errors.New("invitation link is invalid or expired")

// Target is what a link points at.
type Target struct {
	ProjectID string `json:"p"`
	UserID    string `json:"u"`
}

// Signer encodes Targets into opaque URL-safe tokens.
type Signer struct {
	sc      *securecookie.SecureCookie
	baseURL string
}

// New builds a Signer. hashKey should be at least 32 bytes; maxAge bounds
// how long a link stays valid.
func New(hashKey, baseURL string, maxAge time.Duration) (*Signer, error) {
	if len(hashKey) < 32 {
		return nil, fmt.Errorf("invite link key must be at least 32 bytes, got %d", len(hashKey))
	}
	sc := securecookie.New([]byte(hashKey), nil)
	sc.MaxAge(int(maxAge.Seconds()))
	sc.SetSerializer(securecookie.JSONEncoder{})
	return &Signer{sc: sc, baseURL: baseURL}, nil
}

// Token returns the signed token for t.
func (s *Signer) Token(t Target) (string, error) {
	return s.sc.Encode(cookieName, t)
}

// Parse verifies token and returns its Target.
func (s *Signer) Parse(token string) (Target, error) {
	var t Target
	if err := s.sc.Decode(cookieName, token, &t); err != nil {
		return Target{}, ErrInvalidLink
	}
	if t.ProjectID == "" || t.UserID == "" {
		return Target{}, ErrInvalidLink
	}
	return t, nil
}

// AcceptURL builds the link placed in invitation emails.
func (s *Signer) AcceptURL(t Target) (string, error) {
	tok, err := s.Token(t)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("projectId", t.ProjectID)
	q.Set("userId", t.UserID)
	q.Set("token", tok)
	return s.baseURL + "/accept-invitation?" + q.Encode(), nil
}
