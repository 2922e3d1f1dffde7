package models

import "time"

// DescriptionMaxLen bounds the free-form profile description, in runes.
const DescriptionMaxLen = 1000

// User is a directory record keyed by its unique, immutable Login.
type User struct {
	ID           int64     `json:"id"`
	Login        string    `json:"login"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Age          int       `json:"age"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser carries registration input. Password is plaintext and must be hashed
// before it reaches storage.
type NewUser struct {
	Login       string
	Email       string
	Password    string
	Age         int
	Description string
}

// UserPatch is a partial update. Nil fields are left untouched.
type UserPatch struct {
	Email       *string
	Password    *string
	Age         *int
	Description *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Password == nil && p.Age == nil && p.Description == nil
}
