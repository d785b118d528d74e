package models

import (
	"time"

	"gorm.io/datatypes"
)

// Admin activity actions.
const (
	AdminActionCreate         = "CREATE"
	AdminActionUpdate         = "UPDATE"
	AdminActionDelete         = "DELETE"
	AdminActionSuspend        = "SUSPEND"
	AdminActionUnsuspend      = "UNSUSPEND"
	AdminActionSettingsUpdate = "SETTINGS_UPDATE"
)

// Admin activity target types.
const (
	TargetUser             = "User"
	TargetArtwork          = "Artwork"
	TargetEvent            = "Event"
	TargetOrder            = "Order"
	TargetPlatformSettings = "PlatformSettings"
)

// AdminActivity is an append-only audit record of a privileged mutation.
type AdminActivity struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	AdminID    uint              `gorm:"not null;index" json:"admin"`
	Action     string            `gorm:"size:32;not null;index" json:"action"`
	TargetType string            `gorm:"size:32;not null" json:"targetType"`
	TargetID   string            `gorm:"size:64" json:"targetId"`
	Details    datatypes.JSONMap `gorm:"type:json" json:"details"`
	IPAddress  string            `gorm:"size:64" json:"ipAddress,omitempty"`
	UserAgent  string            `gorm:"size:512" json:"userAgent,omitempty"`
	CreatedAt  time.Time         `gorm:"index:idx_admin_activity_created,sort:desc" json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// IsValidAdminAction reports whether action belongs to the audited set.
func IsValidAdminAction(action string) bool {
	switch action {
	case AdminActionCreate, AdminActionUpdate, AdminActionDelete,
		AdminActionSuspend, AdminActionUnsuspend, AdminActionSettingsUpdate:
		return true
	}
	return false
}

// IsValidTargetType reports whether target belongs to the audited set.
func IsValidTargetType(target string) bool {
	switch target {
	case TargetUser, TargetArtwork, TargetEvent, TargetOrder, TargetPlatformSettings:
		return true
	}
	return false
}

// PlatformSettingsID is the primary key of the single settings row.
const PlatformSettingsID = 1

// PlatformSettings stores the global marketplace configuration document.
type PlatformSettings struct {
	ID        uint              `gorm:"primaryKey" json:"-"`
	Values    datatypes.JSONMap `gorm:"column:document;type:json" json:"values"`
	UpdatedBy *uint             `json:"updatedBy,omitempty"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
