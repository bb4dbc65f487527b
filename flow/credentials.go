package flow

import (
	"errors"

	"github.com/awnumar/memguard"
)

// Credentials holds the kiosk login secret between input and the login
// call. The password lives in a memguard Enclave (encrypted at rest in
// memory); call Destroy() once the login attempt finished.
type Credentials struct {
	userID    string
	password  *memguard.Enclave
	destroyed bool
}

// NewCredentials seals the password into an enclave.
func NewCredentials(userID, password string) *Credentials {
	return &Credentials{
		userID:   userID,
		password: memguard.NewEnclave([]byte(password)),
	}
}

// UserID returns the login identifier.
func (c *Credentials) UserID() string { return c.userID }

// open decrypts the password for the duration of one call. The caller
// must Destroy the returned buffer.
func (c *Credentials) open() (*memguard.LockedBuffer, error) {
	if c.destroyed || c.password == nil {
		return nil, errors.New("credentials destroyed")
	}
	return c.password.Open()
}

// Destroy drops the enclave reference; the password can no longer be read.
func (c *Credentials) Destroy() {
	c.password = nil
	c.destroyed = true
}
