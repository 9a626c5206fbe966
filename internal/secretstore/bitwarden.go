package secretstore

import (
	"context"
	"fmt"

	sdk "github.com/bitwarden/sdk-go"

	kerrors "github.com/lazywarden/lazywarden/internal/errors"
)

// BitwardenConfig holds the settings needed to log in to Bitwarden Secrets Manager.
type BitwardenConfig struct {
	APIURL      string
	IdentityURL string
	AccessToken string

	// StateFile caches the SDK session between runs. Empty disables it.
	StateFile string
}

// Bitwarden reads secrets from Bitwarden Secrets Manager.
type Bitwarden struct {
	get   func(id string) (string, error)
	close func()
}

// NewBitwarden creates an SDK client and logs in with the access token.
func NewBitwarden(cfg BitwardenConfig) (*Bitwarden, error) {
	apiURL, identityURL := cfg.APIURL, cfg.IdentityURL
	client, err := sdk.NewBitwardenClient(&apiURL, &identityURL)
	if err != nil {
		return nil, fmt.Errorf("%w: creating client: %v", kerrors.ErrSecretRetrieval, err)
	}

	var statePath *string
	if cfg.StateFile != "" {
		statePath = &cfg.StateFile
	}
	if err := client.AccessTokenLogin(cfg.AccessToken, statePath); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: authenticating: %v", kerrors.ErrSecretRetrieval, err)
	}

	return &Bitwarden{
		get: func(id string) (string, error) {
			secret, err := client.Secrets().Get(id)
			if err != nil {
				return "", err
			}
			return secret.Value, nil
		},
		close: client.Close,
	}, nil
}

// Get fetches the secret value for id. The call blocks and is not retried.
func (b *Bitwarden) Get(ctx context.Context, id string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrSecretRetrieval, err)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %s: %v", kerrors.ErrSecretRetrieval, id, err)
	}

	value, err := b.get(id)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", kerrors.ErrSecretRetrieval, id, err)
	}
	return value, nil
}

// Close releases the SDK client.
func (b *Bitwarden) Close() {
	if b.close != nil {
		b.close()
	}
}
