// Package tokenpkg manages the creation and verification of auth tokens.
package tokenpkg

import "time"

// Maker is an interface for managing tokens.
type Maker interface {
	// CreateToken creates a new token for the email, valid for the duration.
	CreateToken(email string, duration time.Duration) (string, *Payload, error)

	// VerifyToken checks if the token is valid.
	VerifyToken(token string) (*Payload, error)
}
