package models

import "time"

// Identity is the authenticated user held by a session
type Identity struct {
	UserID       string       `json:"id"`
	Email        string       `json:"email"`
	FullName     string       `json:"full_name"`
	Capabilities Capabilities `json:"capabilities"`
}

// IdentityFromProfile builds the session identity for p
func IdentityFromProfile(p *Profile) *Identity {
	if p == nil {
		return nil
	}
	return &Identity{
		UserID:       p.ID,
		Email:        p.Email,
		FullName:     p.FullName,
		Capabilities: p.Capabilities,
	}
}

// SignInRequest is the credentials payload
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// SignUpRequest is the registration payload
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
	FullName string `json:"fullName" binding:"required,min=1,max=100"`
}

// SessionResponse is returned by sign-in, sign-up and session check
type SessionResponse struct {
	Success   bool       `json:"success"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	Identity  *Identity  `json:"identity"`
}

// SignOutResponse is returned after sign-out
type SignOutResponse struct {
	Success bool `json:"success"`
}
