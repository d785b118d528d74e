package models

import "time"

// Roles recognised by the marketplace.
const (
	RoleUser       = "user"
	RoleArtist     = "artist"
	RoleGallerist  = "gallerist"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superAdmin"
)

// Artist status lifecycle values gating seller privileges.
const (
	ArtistStatusNone       = "none"
	ArtistStatusPending    = "pending"
	ArtistStatusIncomplete = "incomplete"
	ArtistStatusVerified   = "verified"
	ArtistStatusSuspended  = "suspended"
)

// User is a marketplace account.
type User struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Name            string     `gorm:"size:120;not null" json:"name"`
	Email           string     `gorm:"size:160;uniqueIndex;not null" json:"email"`
	PasswordHash    string     `gorm:"size:255;not null" json:"-"`
	Role            string     `gorm:"size:32;not null;default:user;index" json:"role"`
	ArtistStatus    string     `gorm:"size:32;not null;default:none;index" json:"artistStatus"`
	ArtistStatement string     `gorm:"type:text" json:"artistStatement,omitempty"`
	PortfolioURL    string     `gorm:"size:512" json:"portfolioUrl,omitempty"`
	Bio             string     `gorm:"type:text" json:"bio"`
	AvatarURL       string     `gorm:"size:512" json:"avatarUrl"`
	AvatarPublicID  string     `gorm:"size:255" json:"-"`
	Suspended       bool       `gorm:"not null;default:false;index" json:"suspended"`
	SuspendedReason string     `gorm:"size:500" json:"suspendedReason,omitempty"`
	SuspendedAt     *time.Time `json:"suspendedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// IsAdmin reports whether the role carries moderation privileges.
func IsAdmin(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleUser, RoleArtist, RoleGallerist, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// CanSell reports whether the user may publish artworks and events.
func (u User) CanSell() bool {
	if u.Suspended {
		return false
	}
	if IsAdmin(u.Role) {
		return true
	}
	return (u.Role == RoleArtist || u.Role == RoleGallerist) && u.ArtistStatus == ArtistStatusVerified
}
