package models

import "time"

// User is the stored account record. PasswordHash never leaves the server.
type User struct {
	ID           string
	UserName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Profile is the password-free view of a user returned to callers.
type Profile struct {
	UserName string `json:"username"`
	Email    string `json:"email"`
}

// Profile returns the public view of u.
func (u *User) Profile() *Profile {
	return &Profile{UserName: u.UserName, Email: u.Email}
}
