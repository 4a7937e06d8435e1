package dto

// -------- Auth --------

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"omitempty,max=150"`
	LastName  string `json:"last_name" validate:"omitempty,max=150"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Refresh token may come from the JSON body.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// PasswordResetRequest tolerates a missing or malformed email: the
// endpoint answers identically no matter what, so no validate tags.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// -------- User administration --------

// UserUpdateRequest carries the only mutable fields. Unknown JSON keys
// are ignored by the decoder; nil pointers mean "leave unchanged".
type UserUpdateRequest struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Email     *string `json:"email" validate:"omitempty,email"`
	IsActive  *bool   `json:"is_active"`
}

type BulkOperationRequest struct {
	UserIDs   []string `json:"user_ids" validate:"required,min=1,dive,required"`
	Operation string   `json:"operation" validate:"required,oneof=activate deactivate"`
}
