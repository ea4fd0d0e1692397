package commands

import (
	"context"
	"errors"

	"github.com/doeshing/kidchat/internal/app"
	"github.com/doeshing/kidchat/internal/application/session"
)

// openSession loads the device state for a one-shot command.
func openSession(ctx context.Context, container *app.Container) (*session.State, error) {
	if container == nil || container.Engine == nil {
		return nil, errors.New(ErrContainerUnavailable)
	}
	return container.OpenSession(ctx)
}
