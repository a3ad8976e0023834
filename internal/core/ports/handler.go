package ports

import (
	"context"

	"github.com/rbroggi/gestionusers/internal/core/model"
)

// UserEventHandler handles user change events.
type UserEventHandler interface {
	// Handle will receive a user event and handle it.
	Handle(ctx context.Context, userEvent model.UserEvent) error
}
