package service

import "github.com/noah-isme/nemesis-api/internal/models"

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID   uint
	Role string
}

// IsAdmin reports whether the actor holds a moderation role.
func (a Actor) IsAdmin() bool {
	return models.IsAdmin(a.Role)
}

// IsSuperAdmin reports whether the actor may manage other admins.
func (a Actor) IsSuperAdmin() bool {
	return a.Role == models.RoleSuperAdmin
}

// RequestMeta is the client information attached to audit records.
type RequestMeta struct {
	IP        string
	UserAgent string
}
