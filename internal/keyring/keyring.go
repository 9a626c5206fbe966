// Package keyring stores the secret store access token in the OS keyring so
// it does not have to live in a .env file.
package keyring

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const serviceName = "lazywarden"

// SaveAccessToken stores the access token for an organization.
func SaveAccessToken(organizationID, token string) error {
	return keyring.Set(serviceName, organizationID, token)
}

// GetAccessToken returns the stored token, or "" if none is stored.
func GetAccessToken(organizationID string) (string, error) {
	token, err := keyring.Get(serviceName, organizationID)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return token, err
}

// DeleteAccessToken removes the stored token.
func DeleteAccessToken(organizationID string) error {
	return keyring.Delete(serviceName, organizationID)
}

// HasAccessToken reports whether a token is stored for the organization.
func HasAccessToken(organizationID string) bool {
	_, err := keyring.Get(serviceName, organizationID)
	return err == nil
}
