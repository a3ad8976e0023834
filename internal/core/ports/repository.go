package ports

import (
	"context"

	"github.com/rbroggi/gestionusers/internal/core/model"
)

// Repository is the interface for the persistence layer.
//
// Implementations enforce the uniqueness of nom and email atomically and report a
// violation as *model.DuplicateKeyError. Unknown identifiers are reported as
// model.ErrNotFound, unparsable ones as model.ErrInvalidID.
type Repository interface {
	// SaveUser durably saves a new user. The generated ID and timestamps are set on the input.
	SaveUser(ctx context.Context, user *model.User) error

	// UpdateUser atomically applies the patch to the user with the given ID.
	UpdateUser(ctx context.Context, id string, patch model.UserPatch) (*UpdateUserResult, error)

	// ListUsers lists all users in storage order.
	ListUsers(ctx context.Context) ([]model.User, error)

	// DeleteUser atomically removes the user with the given ID and returns it.
	DeleteUser(ctx context.Context, id string) (*model.User, error)

	// SearchUsers lists the users matching the query parameters.
	SearchUsers(ctx context.Context, query SearchUsersQuery) ([]model.User, error)
}

// UpdateUserResult gathers the state of a user around an update.
type UpdateUserResult struct {
	// Before is the state prior to the update.
	Before model.User

	// After is the state once the update was applied.
	After model.User
}

// SearchUsersQuery gathers the search parameters. Empty values are ignored as filter.
type SearchUsersQuery struct {
	// Nom is matched as a case-insensitive substring of the user nom.
	Nom string

	// Prenom is matched as a case-insensitive substring of the user prenom.
	Prenom string
}
