package model

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Validation errors for User.
var (
	ErrInvalidEmail  = errors.New("email address is not valid")
	ErrEmptyPassword = errors.New("password cannot be empty")
	ErrEmptyUserName = errors.New("name and surname cannot be empty")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether email has the user@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// User is a registered account. The password hash never leaves the backend.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	Email        string    `json:"email"`
	CellNumber   string    `json:"cellNumber"`
	CreatedAt    time.Time `json:"createdAt"`
	PasswordHash string    `json:"-"`
}

// Validate checks the profile fields.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" || strings.TrimSpace(u.Surname) == "" {
		return ErrEmptyUserName
	}
	if !ValidEmail(u.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// CreateUserDto is the registration payload.
type CreateUserDto struct {
	ID         string    `json:"id,omitempty"`
	Name       string    `json:"name"`
	Surname    string    `json:"surname"`
	Email      string    `json:"email"`
	CellNumber string    `json:"cellNumber"`
	Password   string    `json:"password"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
}

// Validate checks the registration payload.
func (d *CreateUserDto) Validate() error {
	u := d.User()
	if err := u.Validate(); err != nil {
		return err
	}
	if d.Password == "" {
		return ErrEmptyPassword
	}
	return nil
}

// User returns the profile part of the payload.
func (d *CreateUserDto) User() User {
	return User{
		ID:         d.ID,
		Name:       strings.TrimSpace(d.Name),
		Surname:    strings.TrimSpace(d.Surname),
		Email:      strings.ToLower(strings.TrimSpace(d.Email)),
		CellNumber: strings.TrimSpace(d.CellNumber),
		CreatedAt:  d.CreatedAt,
	}
}

// UpdateUserDto replaces the editable profile fields.
type UpdateUserDto struct {
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Email      string `json:"email"`
	CellNumber string `json:"cellNumber"`
}

// Apply copies the profile fields into user and validates the result.
func (d *UpdateUserDto) Apply(user *User) error {
	merged := *user
	merged.Name = strings.TrimSpace(d.Name)
	merged.Surname = strings.TrimSpace(d.Surname)
	merged.Email = strings.ToLower(strings.TrimSpace(d.Email))
	merged.CellNumber = strings.TrimSpace(d.CellNumber)
	if err := merged.Validate(); err != nil {
		return err
	}
	*user = merged
	return nil
}

// LoginRequest carries sign-in credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
