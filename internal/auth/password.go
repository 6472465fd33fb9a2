package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// Credentials holds the configured admin login. When PassHash is set it is
// a bcrypt hash and takes precedence over the plaintext Pass.
type Credentials struct {
	User     string
	Pass     string
	PassHash string
}

// Match checks a supplied username/password pair in constant time.
func (c Credentials) Match(user, pass string) bool {
	if user == "" || pass == "" {
		return false
	}

	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(c.User)) == 1

	var passOK bool
	if c.PassHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(c.PassHash), []byte(pass)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(pass), []byte(c.Pass)) == 1
	}

	return userOK && passOK
}
