package usecase

import (
	"context"
	"fmt"

	"github.com/rbroggi/gestionusers/internal/core/model"
	"github.com/rbroggi/gestionusers/internal/core/ports"
)

// NewInformer builds a new informer.
func NewInformer(sender ports.Sender) *Informer {
	return &Informer{sender: sender}
}

// Informer publicly 'informs' about user changes through a Sender.
type Informer struct {
	sender ports.Sender
}

// Handle sends the event unless it carries no visible change.
func (i *Informer) Handle(ctx context.Context, userEvent model.UserEvent) error {
	// an update that only bumped updatedAt is not worth publishing
	if sameContent(userEvent.Before, userEvent.After) {
		return nil
	}

	if err := i.sender.Send(ctx, userEvent); err != nil {
		return fmt.Errorf("error sending user event ID [%s]: %w", userEvent.ID, err)
	}

	return nil
}

func sameContent(before *model.User, after *model.User) bool {
	if before == nil && after == nil {
		return true
	}
	if before == nil || after == nil {
		return false
	}
	b, a := *before, *after
	b.UpdatedAt = a.UpdatedAt
	return b == a
}
