package port

import (
	"context"
	"errors"
)

// User is the identity provider's view of an account. This core trusts it
// without re-validating credentials.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// ErrUnknownUser signals that the provider has no record for the id.
var ErrUnknownUser = errors.New("identity: unknown user")

// Directory resolves user ids to identity/role data.
type Directory interface {
	Resolve(ctx context.Context, userID string) (User, error)
}
