package models

import (
	"net/url"
	"time"
)

// Profile is the identity record of a user
type Profile struct {
	ID           string       `json:"id"`
	FullName     string       `json:"full_name"`
	AvatarURL    *string      `json:"avatar_url,omitempty"`
	Bio          *string      `json:"bio,omitempty"`
	Email        string       `json:"email"`
	Capabilities Capabilities `json:"capabilities"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// IsMentor reports whether the profile holds the mentor capability
func (p *Profile) IsMentor() bool {
	return p != nil && p.Capabilities.Has(CapabilityMentor)
}

// IsAdmin reports whether the profile holds the admin capability
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Capabilities.Has(CapabilityAdmin)
}

// DisplayAvatar returns the stored avatar or a generated initials avatar
func (p *Profile) DisplayAvatar() string {
	if p.AvatarURL != nil && *p.AvatarURL != "" {
		return *p.AvatarURL
	}
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(p.FullName)
}

// UpdateProfileRequest represents a profile update
type UpdateProfileRequest struct {
	FullName string  `json:"full_name" binding:"required,min=1,max=100"`
	Bio      *string `json:"bio" binding:"omitempty,max=5000"`
}

// UploadAvatarRequest represents an avatar upload (base64 or data URI)
type UploadAvatarRequest struct {
	Image       string `json:"image" binding:"required"`
	FileName    string `json:"fileName" binding:"required,max=255"`
	ContentType string `json:"contentType" binding:"required,oneof=image/jpeg image/png image/webp"`
}

// UploadAvatarResponse is returned after an avatar upload
type UploadAvatarResponse struct {
	Success   bool   `json:"success"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// AdminUserListItem is one row of the admin user list
type AdminUserListItem struct {
	Profile
	BookingCount int `json:"booking_count"`
}
