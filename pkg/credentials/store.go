package credentials

import (
	"errors"
	"time"
)

// Credential is a named token kept by one of the stores
type Credential struct {
	Name         string    `json:"name"`
	Token        string    `json:"token"`
	LastModified time.Time `json:"last_modified"`
}

// Store is the interface for storing and retrieving tokens
type Store interface {
	// Store saves a credential, replacing one with the same name
	Store(cred *Credential) error

	// Retrieve gets the credential stored under name
	Retrieve(name string) (*Credential, error)

	// Delete removes the credential stored under name
	Delete(name string) error

	// Exists checks if a credential is stored under name
	Exists(name string) bool
}

var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)

// Sanitize returns a copy with the token masked
func Sanitize(cred *Credential) *Credential {
	if cred == nil {
		return nil
	}
	return &Credential{
		Name:         cred.Name,
		Token:        maskString(cred.Token),
		LastModified: cred.LastModified,
	}
}

func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
