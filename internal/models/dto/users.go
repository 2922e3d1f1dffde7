package dto

import (
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/hongminglow/userdir/internal/models"
)

// ErrValidation marks malformed client input.
var ErrValidation = errors.New("validation error")

// RegisterRequest is the registration payload. Age is a pointer so that a
// missing field can be told apart from zero.
type RegisterRequest struct {
	Login       string  `json:"login"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	Age         *int    `json:"age"`
	Description *string `json:"description,omitempty"`
}

// UpdateUserRequest carries any subset of the registration fields except login.
type UpdateUserRequest struct {
	Email       *string `json:"email,omitempty"`
	Password    *string `json:"password,omitempty"`
	Age         *int    `json:"age,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Validate checks required fields and returns the normalised domain input.
func (r RegisterRequest) Validate() (models.NewUser, error) {
	login := strings.TrimSpace(r.Login)
	email := strings.TrimSpace(r.Email)
	if login == "" || email == "" || r.Password == "" || r.Age == nil {
		return models.NewUser{}, fmt.Errorf("%w: login, email, password and age are required", ErrValidation)
	}
	if err := validateEmail(email); err != nil {
		return models.NewUser{}, err
	}
	if err := validateAge(*r.Age); err != nil {
		return models.NewUser{}, err
	}
	if err := validatePassword(r.Password); err != nil {
		return models.NewUser{}, err
	}
	out := models.NewUser{
		Login:    login,
		Email:    email,
		Password: r.Password,
		Age:      *r.Age,
	}
	if r.Description != nil {
		if err := validateDescription(*r.Description); err != nil {
			return models.NewUser{}, err
		}
		out.Description = *r.Description
	}
	return out, nil
}

// Validate checks the supplied fields and converts the request into a patch.
func (r UpdateUserRequest) Validate() (models.UserPatch, error) {
	var patch models.UserPatch
	if r.Email != nil {
		email := strings.TrimSpace(*r.Email)
		if err := validateEmail(email); err != nil {
			return models.UserPatch{}, err
		}
		patch.Email = &email
	}
	if r.Password != nil {
		if err := validatePassword(*r.Password); err != nil {
			return models.UserPatch{}, err
		}
		patch.Password = r.Password
	}
	if r.Age != nil {
		if err := validateAge(*r.Age); err != nil {
			return models.UserPatch{}, err
		}
		patch.Age = r.Age
	}
	if r.Description != nil {
		if err := validateDescription(*r.Description); err != nil {
			return models.UserPatch{}, err
		}
		patch.Description = r.Description
	}
	return patch, nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: email is not a valid address", ErrValidation)
	}
	return nil
}

// MaxAge matches the range of the INTEGER age column.
const MaxAge = math.MaxInt32

func validateAge(age int) error {
	if age < 0 {
		return fmt.Errorf("%w: age must not be negative", ErrValidation)
	}
	if age > MaxAge {
		return fmt.Errorf("%w: age must be at most %d", ErrValidation, MaxAge)
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" || !utf8.ValidString(password) {
		return fmt.Errorf("%w: password must be a non-empty UTF-8 string", ErrValidation)
	}
	// bcrypt rejects inputs longer than 72 bytes.
	if len(password) > 72 {
		return fmt.Errorf("%w: password must be at most 72 bytes", ErrValidation)
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > models.DescriptionMaxLen {
		return fmt.Errorf("%w: description must be at most %d characters", ErrValidation, models.DescriptionMaxLen)
	}
	return nil
}
