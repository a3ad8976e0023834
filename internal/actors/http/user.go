package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rbroggi/gestionusers/internal/core/model"
	log "github.com/sirupsen/logrus"
)

// userServiceUsecase
type userServiceUsecase interface {
	// CreateUser creates a user.
	CreateUser(ctx context.Context, args model.CreateUserArgs) (*model.CreateUserResponse, error)

	// ListUsers lists users.
	ListUsers(ctx context.Context) (*model.ListUsersResponse, error)

	// DeleteUser deletes a user.
	DeleteUser(ctx context.Context, args model.DeleteUserArgs) (*model.DeleteUserResponse, error)

	// UpdateUser updates a user.
	UpdateUser(ctx context.Context, args model.UpdateUserArgs) (*model.UpdateUserResponse, error)

	// SearchUsers searches users by nom and/or prenom.
	SearchUsers(ctx context.Context, args model.SearchUsersArgs) (*model.SearchUsersResponse, error)
}

// UserServiceArgs are the mandatory args to instantiate the UserService.
type UserServiceArgs struct {
	// Usecase is the usecase for user-service
	Usecase userServiceUsecase
}

// NewUserService creates a new UserService
func NewUserService(args UserServiceArgs) *UserService {
	return &UserService{usecase: args.Usecase}
}

// UserService implements the user REST endpoints.
type UserService struct {
	usecase userServiceUsecase
}

type createUserResponse struct {
	Message string     `json:"message"`
	User    model.User `json:"user"`
}

type listUsersResponse struct {
	Success bool         `json:"success"`
	Liste   []model.User `json:"liste"`
}

type deleteUserResponse struct {
	Success     bool       `json:"success"`
	UserDeleted model.User `json:"userDeleted"`
}

type updateUserResponse struct {
	UserUpdated model.User `json:"userUpdated"`
}

// CreateUser handles POST /user/ajouter.
func (u *UserService) CreateUser(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	body, err := decodeUserBody(w, r)
	if err != nil {
		u.fail(w, opCreate, err)
		return
	}
	resp, err := u.usecase.CreateUser(r.Context(), body.createArgs())
	if err != nil {
		u.fail(w, opCreate, err)
		return
	}
	writeJSON(w, http.StatusOK, createUserResponse{Message: "User ajouté avec succès :", User: resp.User})
}

// ListUsers handles GET /user/lister.
func (u *UserService) ListUsers(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	resp, err := u.usecase.ListUsers(r.Context())
	if err != nil {
		u.fail(w, opList, err)
		return
	}
	writeJSON(w, http.StatusOK, listUsersResponse{Success: true, Liste: nonNil(resp.Users)})
}

// DeleteUser handles GET /user/{id}/supprimer.
func (u *UserService) DeleteUser(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	resp, err := u.usecase.DeleteUser(r.Context(), model.DeleteUserArgs{ID: pathParams["id"]})
	if err != nil {
		u.fail(w, opDelete, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteUserResponse{Success: true, UserDeleted: resp.User})
}

// UpdateUser handles PUT /user/{id}/modifier. Only the fields present in the body are modified.
func (u *UserService) UpdateUser(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
	body, err := decodeUserBody(w, r)
	if err != nil {
		u.fail(w, opUpdate, err)
		return
	}
	resp, err := u.usecase.UpdateUser(r.Context(), model.UpdateUserArgs{ID: pathParams["id"], Patch: body.patch()})
	if err != nil {
		u.fail(w, opUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, updateUserResponse{UserUpdated: resp.User})
}

// SearchUsers handles GET /user/rechercher?nom=&prenom=.
func (u *UserService) SearchUsers(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	query := r.URL.Query()
	resp, err := u.usecase.SearchUsers(r.Context(), model.SearchUsersArgs{
		Nom:    query.Get("nom"),
		Prenom: query.Get("prenom"),
	})
	if err != nil {
		u.fail(w, opSearch, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(resp.Users))
}

func (u *UserService) fail(w http.ResponseWriter, op operation, err error) {
	status, body := failureFor(op, err)
	entry := log.WithError(err).
		WithField("operation", string(op)).
		WithField("kind", model.KindOf(err).String()).
		WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error("error invoking usecase")
	} else {
		entry.Warn("request rejected")
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("error encoding response body")
	}
}

func nonNil(users []model.User) []model.User {
	if users == nil {
		return []model.User{}
	}
	return users
}
