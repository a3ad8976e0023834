package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Normalize(t *testing.T) {
	u := &User{
		Nom:    "  Dupont ",
		Prenom: "\tJean\n",
		Tel:    " 12345678 ",
		Email:  "  Jean.DUPONT@Email.COM ",
	}
	u.Normalize()

	assert.Equal(t, "Dupont", u.Nom)
	assert.Equal(t, "Jean", u.Prenom)
	assert.Equal(t, "jean.dupont@email.com", u.Email)
	// tel is not trimmed
	assert.Equal(t, " 12345678 ", u.Tel)
}

func TestUser_Validate(t *testing.T) {
	valid := func() User {
		return User{Nom: "Dupont", Prenom: "Jean", Tel: "12345678", Email: "jean.dupont@email.com"}
	}
	tests := []struct {
		name           string
		user           func() User
		expectedFields []string
	}{
		{
			name: "valid user",
			user: valid,
		},
		{
			name: "valid email with subdomains and dashes",
			user: func() User {
				u := valid()
				u.Email = "jean-pierre.du_pont@mail.example-host.fr"
				return u
			},
		},
		{
			name:           "every field missing",
			user:           func() User { return User{} },
			expectedFields: []string{"nom", "prenom", "tel", "email"},
		},
		{
			name: "tel with 5 digits",
			user: func() User {
				u := valid()
				u.Tel = "12345"
				return u
			},
			expectedFields: []string{"tel"},
		},
		{
			name: "tel with 9 digits",
			user: func() User {
				u := valid()
				u.Tel = "123456789"
				return u
			},
			expectedFields: []string{"tel"},
		},
		{
			name: "tel with non digits",
			user: func() User {
				u := valid()
				u.Tel = "+1234567"
				return u
			},
			expectedFields: []string{"tel"},
		},
		{
			name: "email without at sign",
			user: func() User {
				u := valid()
				u.Email = "not-an-email"
				return u
			},
			expectedFields: []string{"email"},
		},
		{
			name: "email with too long top level domain",
			user: func() User {
				u := valid()
				u.Email = "jean@example.abcdefgh"
				return u
			},
			expectedFields: []string{"email"},
		},
		{
			name: "malformed tel and email",
			user: func() User {
				u := valid()
				u.Tel = "abc"
				u.Email = "a@b"
				return u
			},
			expectedFields: []string{"tel", "email"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			u := test.user()
			err := u.Validate()
			if len(test.expectedFields) == 0 {
				require.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			got := make([]string, len(validationErr.Fields))
			for i, f := range validationErr.Fields {
				got[i] = f.Field
				assert.NotEmpty(t, f.Message)
			}
			assert.Equal(t, test.expectedFields, got)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

func TestUser_ValidateMessages(t *testing.T) {
	u := &User{Nom: "Dupont", Prenom: "Jean", Tel: "12345", Email: "not-an-email"}
	err := u.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Le numéro de téléphone doit contenir 8 chiffres.")
	assert.Contains(t, err.Error(), "Veuillez saisir une adresse e-mail valide.")
}

func TestUserPatch_NormalizeAndApply(t *testing.T) {
	nom := " Martin "
	email := " Sophie.MARTIN@email.com"
	patch := UserPatch{Nom: &nom, Email: &email}
	patch.Normalize()

	require.NotNil(t, patch.Nom)
	assert.Equal(t, "Martin", *patch.Nom)
	assert.Equal(t, "sophie.martin@email.com", *patch.Email)
	assert.Nil(t, patch.Prenom)
	assert.Nil(t, patch.Tel)
	// the original strings are untouched
	assert.Equal(t, " Martin ", nom)

	before := User{ID: "1", Nom: "Dupont", Prenom: "Sophie", Tel: "12345678", Email: "old@email.com", CreatedAt: dummyTime(), UpdatedAt: dummyTime()}
	now := dummyTime().Add(1)
	after := patch.Apply(before, now)
	assert.Equal(t, User{ID: "1", Nom: "Martin", Prenom: "Sophie", Tel: "12345678", Email: "sophie.martin@email.com", CreatedAt: dummyTime(), UpdatedAt: now}, after)
	assert.Equal(t, "Dupont", before.Nom)
}

func TestUserPatch_IsEmpty(t *testing.T) {
	assert.True(t, UserPatch{}.IsEmpty())
	tel := "12345678"
	assert.False(t, UserPatch{Tel: &tel}.IsEmpty())
}

func TestUser_ValidateFieldErrors(t *testing.T) {
	err := (&User{Tel: "12345", Email: "a@b"}).Validate()

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []FieldError{
		{Field: "nom", Message: `Le champ "nom" est requis.`},
		{Field: "prenom", Message: `Le champ "prenom" est requis.`},
		{Field: "tel", Message: "Le numéro de téléphone doit contenir 8 chiffres."},
		{Field: "email", Message: "Veuillez saisir une adresse e-mail valide."},
	}, validationErr.Fields)
}
