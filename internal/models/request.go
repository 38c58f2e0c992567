package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// RegisterRequest is the JSON body for POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required.Error("Username is required")),
		validation.Field(&r.Email,
			validation.Required.Error("Valid email is required"),
			is.EmailFormat.Error("Valid email is required"),
		),
		validation.Field(&r.Password,
			validation.Required.Error("Password must be at least 6 characters"),
			validation.RuneLength(MinPasswordLength, 0).Error("Password must be at least 6 characters"),
		),
	)
}

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("Valid email is required"),
			is.EmailFormat.Error("Valid email is required"),
		),
		validation.Field(&r.Password, validation.Required.Error("Password is required")),
	)
}

// CategoryRequest is the JSON body for POST /categories.
type CategoryRequest struct {
	Name string `json:"name"`
}

func (r CategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("Name is required")),
	)
}

// CommentRequest is the JSON body for adding a comment or reply.
type CommentRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}
