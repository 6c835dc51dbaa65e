package auth

import "storefront-core/internal/models"

// Session is the external auth collaborator. The engine never issues or
// validates credentials; it only asks who is signed in right now.
type Session interface {
	// CurrentUser returns the signed-in user, or nil when signed out.
	CurrentUser() *models.UserRef
}

// StaticSession reports a fixed user. It backs local runs and tests.
type StaticSession struct {
	user *models.UserRef
}

// NewStaticSession creates a session fixed to user; pass nil for signed out.
func NewStaticSession(user *models.UserRef) *StaticSession {
	return &StaticSession{user: user}
}

func (s *StaticSession) CurrentUser() *models.UserRef {
	return s.user
}
