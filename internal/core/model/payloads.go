package model

// CreateUserArgs contain the arguments of the CreateUser method.
type CreateUserArgs struct {
	// Nom is the user last name.
	Nom string

	// Prenom is the user first name.
	Prenom string

	// Email is the user email
	Email string

	// Tel is the user phone number
	Tel string
}

// CreateUserResponse contains the response of the CreateUser method.
type CreateUserResponse struct {
	// User as stored, including generated fields.
	User User
}

// ListUsersResponse contains every stored user.
type ListUsersResponse struct {
	// Users in storage order.
	Users []User
}

// DeleteUserArgs contains the arguments for deleting a user.
type DeleteUserArgs struct {
	// ID is the id of the user to be deleted.
	ID string
}

// DeleteUserResponse contains the removed user.
type DeleteUserResponse struct {
	// User is the state of the user at the moment of deletion.
	User User
}

// UpdateUserArgs contain the arguments of the UpdateUser method.
type UpdateUserArgs struct {
	// ID is the id of the user to be updated.
	ID string

	// Patch holds the supplied fields. Fields left nil are not modified.
	Patch UserPatch
}

// UpdateUserResponse contains the response of the UpdateUser method.
type UpdateUserResponse struct {
	// User is the post-update state.
	User User
}

// SearchUsersArgs contain the search terms. At least one must be non-empty.
type SearchUsersArgs struct {
	// Nom is matched as a case-insensitive substring of the user last name.
	Nom string

	// Prenom is matched as a case-insensitive substring of the user first name.
	Prenom string
}

// SearchUsersResponse contains the users matching the search terms.
type SearchUsersResponse struct {
	Users []User
}
