package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// ShellAuth guards the web shell with a single shared password.
type ShellAuth struct {
	// PasswordHash is a bcrypt hash. Empty disables the password gate.
	PasswordHash string
	BcryptCost   int
	Pepper       string
}

// NewShellAuth reads SHELL_PASSWORD_HASH, BCRYPT_COST (default 12) and PASSWORD_PEPPER.
func NewShellAuth() (*ShellAuth, error) {
	cost := 12
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
		}
		cost = n
	}
	if cost < 10 || cost > 14 {
		return nil, fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", cost)
	}

	return &ShellAuth{
		PasswordHash: os.Getenv("SHELL_PASSWORD_HASH"),
		BcryptCost:   cost,
		Pepper:       os.Getenv("PASSWORD_PEPPER"),
	}, nil
}

// Enabled reports whether a password is required.
func (a *ShellAuth) Enabled() bool {
	return a.PasswordHash != ""
}

// Hash returns a bcrypt hash of pw suitable for SHELL_PASSWORD_HASH.
func (a *ShellAuth) Hash(pw string) (string, error) {
	if pw == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pw+a.Pepper), a.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify checks pw against the configured hash. It always succeeds when the gate is disabled.
func (a *ShellAuth) Verify(pw string) bool {
	if !a.Enabled() {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(pw+a.Pepper)) == nil
}
