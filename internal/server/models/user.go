// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a principal from the credential directory. Only UserName ever
// goes into a token.
type User struct {
	ID           string
	UserName     string
	PasswordHash []byte
	CreatedAt    time.Time
}
