package models

// User is an application account. Created once at signup, immutable
// afterwards; Jobs and Trips reference it by UserID only.
type User struct {
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}
