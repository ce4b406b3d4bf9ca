package models

import "time"

// Claims is the verified content of a bearer token.
// Authorities holds the raw comma-joined role names exactly as carried by the token.
type Claims struct {
	Subject     string
	Authorities string
	ExpiresAt   time.Time
}
