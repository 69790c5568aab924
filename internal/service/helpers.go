package service

import (
	"time"
)

// GetExpiresAt turns an OAuth expires_in value (seconds) into a deadline.
func GetExpiresAt(expiresIn int) time.Time {
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}
