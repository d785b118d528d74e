package dto

import (
	"time"
)

// AdminUserListQuery captures admin user listing filters.
type AdminUserListQuery struct {
	Role         string
	ArtistStatus string
	Search       string
	Page         int
	Limit        int
}

// AdminUserUpdateRequest changes moderation fields of an account.
type AdminUserUpdateRequest struct {
	Role         *string `json:"role" validate:"omitempty,oneof=user artist gallerist admin superAdmin"`
	ArtistStatus *string `json:"artistStatus" validate:"omitempty,oneof=none pending incomplete verified suspended"`
}

// SuspendUserRequest carries the reason shown to the suspended user.
type SuspendUserRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// AdminActivityQuery captures audit trail filters.
type AdminActivityQuery struct {
	AdminID    uint
	Action     string
	TargetType string
	TargetID   string
	Page       int
	Limit      int
}

// SettingsResponse is the platform settings document.
type SettingsResponse struct {
	Values    map[string]interface{} `json:"values"`
	UpdatedBy *uint                  `json:"updatedBy,omitempty"`
	UpdatedAt *time.Time             `json:"updatedAt,omitempty"`
}

// UploadResponse describes a stored media file.
type UploadResponse struct {
	URL       string `json:"url"`
	PublicID  string `json:"publicId"`
	MimeType  string `json:"mimeType"`
	Kind      string `json:"kind"`
	SizeBytes int64  `json:"sizeBytes"`
}
