package secretstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	kerrors "github.com/lazywarden/lazywarden/internal/errors"
)

// Store resolves a secret identifier to its value.
type Store interface {
	Get(ctx context.Context, id string) (string, error)
}

// Secret is a fetched secret value and the identifier it was fetched by.
// Values are held in memory only.
type Secret struct {
	ID    string
	Value string
}

// String hides the value so a Secret can be logged safely.
func (s Secret) String() string {
	return "Secret(" + s.ID + ")"
}

// GoString hides the value from %#v.
func (s Secret) GoString() string {
	return s.String()
}

// ValidateID checks that id is a UUID v4.
func ValidateID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w %q: %v", kerrors.ErrInvalidSecretID, id, err)
	}
	if parsed.Version() != 4 {
		return fmt.Errorf("%w %q: expected UUID version 4, got %d", kerrors.ErrInvalidSecretID, id, parsed.Version())
	}
	return nil
}

// Fetch resolves each id in order and stops at the first failure.
func Fetch(ctx context.Context, store Store, ids ...string) ([]Secret, error) {
	values := make([]Secret, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		value, err := store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		values = append(values, Secret{ID: id, Value: value})
	}
	return values, nil
}
