package model

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	telTag   = "tel8"
	emailTag = "email_fr"
)

var (
	telPattern   = regexp.MustCompile(`^\d{8}$`)
	emailPattern = regexp.MustCompile(`^[\w-]+(\.[\w-]+)*@([\w-]+\.)+[a-zA-Z]{2,7}$`)

	validate = newValidator()
)

// newValidator reports fields under their json name and knows the tel8 and email_fr tags.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	patterns := map[string]*regexp.Regexp{telTag: telPattern, emailTag: emailPattern}
	for tag, pattern := range patterns {
		pattern := pattern
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return pattern.MatchString(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	}
	return v
}

// NormalizeNom trims the last name.
func NormalizeNom(nom string) string {
	return strings.TrimSpace(nom)
}

// NormalizePrenom trims the first name.
func NormalizePrenom(prenom string) string {
	return strings.TrimSpace(prenom)
}

// NormalizeEmail trims and lower-cases the email so that uniqueness holds case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalize applies the schema normalisation to every field of the user.
func (u *User) Normalize() {
	u.Nom = NormalizeNom(u.Nom)
	u.Prenom = NormalizePrenom(u.Prenom)
	u.Email = NormalizeEmail(u.Email)
}

// Normalize applies the schema normalisation to the supplied fields of the patch.
// Tel is stored as given.
func (p *UserPatch) Normalize() {
	if p.Nom != nil {
		nom := NormalizeNom(*p.Nom)
		p.Nom = &nom
	}
	if p.Prenom != nil {
		prenom := NormalizePrenom(*p.Prenom)
		p.Prenom = &prenom
	}
	if p.Email != nil {
		email := NormalizeEmail(*p.Email)
		p.Email = &email
	}
}

// Validate checks the user against the schema. It expects a normalised user and
// returns a *ValidationError listing every failing field, or nil.
func (u *User) Validate() error {
	err := validate.Struct(u)
	var failures validator.ValidationErrors
	if !errors.As(err, &failures) {
		return err
	}
	fields := make([]FieldError, len(failures))
	for i, f := range failures {
		fields[i] = FieldError{Field: f.Field(), Message: schemaMessage(f)}
	}
	return &ValidationError{Fields: fields}
}

func schemaMessage(f validator.FieldError) string {
	switch f.Tag() {
	case "required":
		return fmt.Sprintf("Le champ %q est requis.", f.Field())
	case telTag:
		return "Le numéro de téléphone doit contenir 8 chiffres."
	case emailTag:
		return "Veuillez saisir une adresse e-mail valide."
	default:
		return fmt.Sprintf("Le champ %q est invalide.", f.Field())
	}
}
