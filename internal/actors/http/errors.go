package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rbroggi/gestionusers/internal/core/model"
)

type operation string

const (
	opCreate operation = "create"
	opList   operation = "list"
	opDelete operation = "delete"
	opUpdate operation = "update"
	opSearch operation = "search"
)

const internalErrorMessage = "Erreur interne du serveur."

// failure is how one kind of error surfaces for one operation.
type failure struct {
	status  int
	message func(err error) string
}

// failures is the single mapping from (operation, error kind) to the HTTP response.
var failures = map[operation]map[model.ErrorKind]failure{
	opCreate: {
		model.KindValidation:   {http.StatusBadRequest, prefixed("Le User n'est pas ajouté ! Erreur : ")},
		model.KindDuplicateKey: {http.StatusBadRequest, duplicateMessage},
		model.KindNotFound:     {http.StatusBadRequest, prefixed("Le User n'est pas ajouté ! Erreur : ")},
		model.KindStorage:      {http.StatusBadRequest, prefixed("Le User n'est pas ajouté ! Erreur : ")},
	},
	opList: {
		model.KindValidation:   {http.StatusInternalServerError, fixed(internalErrorMessage)},
		model.KindDuplicateKey: {http.StatusInternalServerError, fixed(internalErrorMessage)},
		model.KindNotFound:     {http.StatusInternalServerError, fixed(internalErrorMessage)},
		model.KindStorage:      {http.StatusInternalServerError, fixed(internalErrorMessage)},
	},
	opDelete: {
		model.KindValidation:   {http.StatusInternalServerError, fixed(internalErrorMessage)},
		model.KindDuplicateKey: {http.StatusInternalServerError, fixed(internalErrorMessage)},
		model.KindNotFound:     {http.StatusNotFound, fixed("Aucun user trouvé avec cet ID.")},
		model.KindStorage:      {http.StatusInternalServerError, fixed(internalErrorMessage)},
	},
	opUpdate: {
		model.KindValidation:   {http.StatusBadRequest, prefixed("Erreur lors de la modification du user : ")},
		model.KindDuplicateKey: {http.StatusBadRequest, prefixed("Erreur lors de la modification du user : ")},
		model.KindNotFound:     {http.StatusNotFound, fixed("user non trouvé")},
		model.KindStorage:      {http.StatusBadRequest, prefixed("Erreur lors de la modification du user : ")},
	},
	opSearch: {
		model.KindValidation:   {http.StatusBadRequest, fixed("Le nom ou le prenom est requis pour la recherche.")},
		model.KindDuplicateKey: {http.StatusInternalServerError, fixed(internalErrorMessage)},
		model.KindNotFound:     {http.StatusInternalServerError, fixed(internalErrorMessage)},
		model.KindStorage:      {http.StatusInternalServerError, fixed(internalErrorMessage)},
	},
}

// withSuccessFlag lists the operations whose bodies carry a "success" field.
var withSuccessFlag = map[operation]bool{
	opList:   true,
	opDelete: true,
}

type errorBody struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message"`
}

// failureFor maps err raised by op to a status code and a response body.
func failureFor(op operation, err error) (int, errorBody) {
	f, ok := failures[op][model.KindOf(err)]
	if !ok {
		f = failure{http.StatusInternalServerError, fixed(internalErrorMessage)}
	}
	body := errorBody{Message: f.message(err)}
	if withSuccessFlag[op] {
		success := false
		body.Success = &success
	}
	return f.status, body
}

func fixed(msg string) func(error) string {
	return func(error) string { return msg }
}

func prefixed(prefix string) func(error) string {
	return func(err error) string { return prefix + err.Error() }
}

func duplicateMessage(err error) string {
	var dup *model.DuplicateKeyError
	if errors.As(err, &dup) && dup.Field != "" {
		return fmt.Sprintf("Le champ %q doit être unique.", dup.Field)
	}
	return "Un champ unique est déjà utilisé par un autre user."
}
