package dto

import (
	"time"

	"github.com/vlehub/user-service/internal/application/auth"
	"github.com/vlehub/user-service/internal/domain"
)

// UserView is the public projection of a user; the password hash never
// leaves the service.
type UserView struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Phone           string    `json:"phone,omitempty"`
	IsActive        bool      `json:"is_active"`
	IsEmailVerified bool      `json:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewUserView(u domain.User) UserView {
	return UserView{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Phone:           u.Phone,
		IsActive:        u.IsActive,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

type ProfileView struct {
	Bio         string     `json:"bio"`
	AvatarURL   string     `json:"avatar_url"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Location    string     `json:"location"`
	Website     string     `json:"website"`
	IsPublic    bool       `json:"is_public"`
	ShowEmail   bool       `json:"show_email"`
}

func NewProfileView(p domain.Profile) *ProfileView {
	return &ProfileView{
		Bio:         p.Bio,
		AvatarURL:   p.AvatarURL,
		DateOfBirth: p.DateOfBirth,
		Location:    p.Location,
		Website:     p.Website,
		IsPublic:    p.IsPublic,
		ShowEmail:   p.ShowEmail,
	}
}

type TokensView struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func NewTokensView(t auth.AuthTokens) TokensView {
	return TokensView{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		ExpiresIn:    t.ExpiresIn,
	}
}

// AuthData is the register/login/refresh payload.
type AuthData struct {
	User   UserView   `json:"user"`
	Tokens TokensView `json:"tokens"`
}

type MessageData struct {
	Message string `json:"message"`
}

// UserDetailData is the user detail payload, profile included when the
// subsystem is enabled and a profile exists.
type UserDetailData struct {
	UserView
	Profile *ProfileView `json:"profile,omitempty"`
}

type Pagination struct {
	TotalCount  int  `json:"total_count"`
	PageCount   int  `json:"page_count"`
	CurrentPage int  `json:"current_page"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

type UserListData struct {
	Users      []UserView `json:"users"`
	Pagination Pagination `json:"pagination"`
}

type BulkOperationData struct {
	Message        string `json:"message"`
	AffectedUsers  int    `json:"affected_users"`
	TotalRequested int    `json:"total_requested"`
}
