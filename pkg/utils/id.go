package utils

import "github.com/google/uuid"

// GenerateID returns a new random UUID string used as a primary key.
func GenerateID() string {
	return uuid.New().String()
}

// IsValidUUID reports whether s parses as a UUID.
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
