// Package keyring keeps the PostgreSQL connection string in the OS keyring
// so it never has to live in a flag, env var or shell history.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/tandrum/tandrum/internal/constants"
	"github.com/tandrum/tandrum/internal/storage/postgres"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Vault addresses one secret in the OS keyring
type Vault struct {
	Service string
	User    string
}

// Default is the vault holding tandrum's database connection string.
func Default() Vault {
	return Vault{Service: constants.AppName, User: constants.DefaultKeyringUser}
}

// Get reads the stored connection string.
func (v Vault) Get() (string, error) {
	connStr, err := keyring.Get(v.Service, v.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return connStr, nil
}

// Set stores a PostgreSQL connection string. Strings that do not look
// like a PostgreSQL DSN are refused.
func (v Vault) Set(connStr string) error {
	if connStr == "" {
		return errors.New("connection string cannot be empty")
	}
	if !postgres.IsConnString(connStr) {
		return fmt.Errorf("%w: not a PostgreSQL connection string", postgres.ErrInvalidConnectionString)
	}
	if err := keyring.Set(v.Service, v.User, connStr); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

// Delete removes the stored connection string.
func (v Vault) Delete() error {
	err := keyring.Delete(v.Service, v.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// Available is a best-effort probe: a read that fails with anything other
// than "not found" means there is no usable keyring.
func (v Vault) Available() bool {
	_, err := keyring.Get(v.Service, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
