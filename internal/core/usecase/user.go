package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rbroggi/gestionusers/internal/core/model"
	"github.com/rbroggi/gestionusers/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// UserServiceArgs contains the mandatory arguments for the UserService.
type UserServiceArgs struct {
	// Repository is the repository for persistance operations.
	Repository ports.Repository
}

// UserServiceOptArgs are the optional arguments for building a UserService
type UserServiceOptArgs = func(*UserService)

// WithEventHandler makes the service hand a model.UserEvent to handler after every successful write.
func WithEventHandler(handler ports.UserEventHandler) UserServiceOptArgs {
	return func(s *UserService) {
		s.events = handler
	}
}

// WithEventTimeout bounds the time given to the event handler for each event.
func WithEventTimeout(timeout time.Duration) UserServiceOptArgs {
	return func(s *UserService) {
		s.eventTimeout = timeout
	}
}

const (
	defaultEventTimeout = 30 * time.Second
	eventQueueSize      = 1024
)

// NewUserService creates a new UserService.
func NewUserService(args UserServiceArgs, optArgs ...UserServiceOptArgs) *UserService {
	s := &UserService{repository: args.Repository, eventTimeout: defaultEventTimeout}
	for _, opt := range optArgs {
		opt(s)
	}
	if s.events != nil {
		s.queue = make(chan model.UserEvent, eventQueueSize)
		s.done = make(chan struct{})
		go s.dispatch()
	}
	return s
}

// UserService gathers the functionality around the user-lifecycle
type UserService struct {
	repository   ports.Repository
	events       ports.UserEventHandler
	eventTimeout time.Duration
	queue        chan model.UserEvent
	done         chan struct{}
	closeOnce    sync.Once
}

// CreateUser normalises and validates a user before saving it. Uniqueness of nom and email
// is left to the repository.
func (s *UserService) CreateUser(ctx context.Context, args model.CreateUserArgs) (*model.CreateUserResponse, error) {
	user := &model.User{
		Nom:    args.Nom,
		Prenom: args.Prenom,
		Tel:    args.Tel,
		Email:  args.Email,
	}
	user.Normalize()
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.repository.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("error saving user in repository: %w", err)
	}

	created := *user
	s.inform(model.UserEvent{After: &created})
	return &model.CreateUserResponse{User: *user}, nil
}

// ListUsers lists every user.
func (s *UserService) ListUsers(ctx context.Context) (*model.ListUsersResponse, error) {
	users, err := s.repository.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users on the repository: %w", err)
	}
	return &model.ListUsersResponse{Users: users}, nil
}

// DeleteUser deletes a user. It returns model.ErrNotFound if the ID does not correspond to an existing user.
func (s *UserService) DeleteUser(ctx context.Context, args model.DeleteUserArgs) (*model.DeleteUserResponse, error) {
	user, err := s.repository.DeleteUser(ctx, args.ID)
	if err != nil {
		return nil, fmt.Errorf("error deleting user from repository: %w", err)
	}

	deleted := *user
	s.inform(model.UserEvent{Before: &deleted})
	return &model.DeleteUserResponse{User: *user}, nil
}

// UpdateUser updates the supplied fields of a user. Input is normalised but not validated against
// the schema formats. It returns model.ErrNotFound if the ID does not correspond to an existing user.
func (s *UserService) UpdateUser(ctx context.Context, args model.UpdateUserArgs) (*model.UpdateUserResponse, error) {
	patch := args.Patch
	patch.Normalize()

	res, err := s.repository.UpdateUser(ctx, args.ID, patch)
	if err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	before, after := res.Before, res.After
	s.inform(model.UserEvent{Before: &before, After: &after})
	return &model.UpdateUserResponse{User: res.After}, nil
}

// SearchUsers lists the users whose nom and/or prenom contain the given terms. It returns
// model.ErrMissingSearchTerms if neither term is supplied.
func (s *UserService) SearchUsers(ctx context.Context, args model.SearchUsersArgs) (*model.SearchUsersResponse, error) {
	if args.Nom == "" && args.Prenom == "" {
		return nil, model.ErrMissingSearchTerms
	}
	users, err := s.repository.SearchUsers(ctx, ports.SearchUsersQuery{
		Nom:    args.Nom,
		Prenom: args.Prenom,
	})
	if err != nil {
		return nil, fmt.Errorf("error searching users on the repository: %w", err)
	}
	return &model.SearchUsersResponse{Users: users}, nil
}

// inform queues the event for the handler without waiting for it. The write already
// happened, so a full queue or a handler failure is only logged.
func (s *UserService) inform(event model.UserEvent) {
	if s.events == nil {
		return
	}
	event.ID = uuid.NewString()
	select {
	case s.queue <- event:
	default:
		log.WithField("event-id", event.ID).Error("user event queue is full, dropping event")
	}
}

// dispatch hands queued events to the handler in order, each under its own timeout.
func (s *UserService) dispatch() {
	defer close(s.done)
	for event := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), s.eventTimeout)
		if err := s.events.Handle(ctx, event); err != nil {
			log.WithError(err).WithField("event-id", event.ID).Error("error handling user event")
		}
		cancel()
	}
}

// Close waits until the queued events have been handled. No write may be issued after Close.
func (s *UserService) Close() {
	if s.events == nil {
		return
	}
	s.closeOnce.Do(func() { close(s.queue) })
	<-s.done
}
