package model

import "time"

// User is the persisted credential record. PasswordHash is the opaque secret
// produced by security.HashPassword and never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthClaims is the identity carried inside both token kinds.
type AuthClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

type AuthUser struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	ExpiresIn        int64     `json:"expires_in"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	User             AuthUser  `json:"user"`
}

func (u User) View() AuthUser {
	return AuthUser{ID: u.ID, Email: u.Email, IsActive: u.IsActive}
}

func (u User) Claims() AuthClaims {
	return AuthClaims{UserID: u.ID, Email: u.Email}
}
