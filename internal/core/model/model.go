package model

import (
	"time"
)

// User represents a user in the system.
type User struct {
	// ID unique identifier of the user. It is assigned by the repository on creation.
	ID string `json:"_id"`

	// Nom is the user last name. Unique across all users.
	Nom string `json:"nom" validate:"required"`

	// Prenom is the user first name.
	Prenom string `json:"prenom" validate:"required"`

	// Tel is the user phone number, exactly 8 digits.
	Tel string `json:"tel" validate:"required,tel8"`

	// Email is the user email. Unique across all users and always lower-case.
	Email string `json:"email" validate:"required,email_fr"`

	// CreatedAt is the time at which the user was created in the system.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is the time at which the user was last updated
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserPatch holds the mutable fields of a user. Nil fields are left untouched.
type UserPatch struct {
	Nom    *string
	Prenom *string
	Tel    *string
	Email  *string
}

// IsEmpty reports whether the patch carries no field at all.
func (p UserPatch) IsEmpty() bool {
	return p.Nom == nil && p.Prenom == nil && p.Tel == nil && p.Email == nil
}

// Apply returns a copy of the user with the patch fields set and UpdatedAt set to now.
func (p UserPatch) Apply(user User, now time.Time) User {
	if p.Nom != nil {
		user.Nom = *p.Nom
	}
	if p.Prenom != nil {
		user.Prenom = *p.Prenom
	}
	if p.Tel != nil {
		user.Tel = *p.Tel
	}
	if p.Email != nil {
		user.Email = *p.Email
	}
	user.UpdatedAt = now
	return user
}

// UserEvent collects a user change. It can represent creation, update and deletion of a user.
type UserEvent struct {
	// ID is the event id.
	ID string

	// Before is the user state before the event. It will be nil in case of user-creations.
	Before *User

	// After is the user state after the event. It will be nil in case of deletions.
	After *User
}
