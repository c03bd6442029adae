package user

import (
	"context"
	"log/slog"
	"time"

	"rentflow/internal/app/commands"
	"rentflow/internal/app/dto"
	"rentflow/internal/app/uow"
	domainuser "rentflow/internal/domain/user"
)

const createUserKey = "user.create"

// CreateUserCommand registers a participant the engine can reference from
// rentals, reviews and payments.
type CreateUserCommand struct {
	CommandID string
	Name      string
	Email     string
}

func (c CreateUserCommand) Key() string { return createUserKey }

type CreateUserHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *CreateUserHandler) Handle(ctx context.Context, cmd CreateUserCommand) (*dto.User, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		ctx = uow.Bind(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	created, err := domainuser.New(domainuser.CreateParams{
		ID:        domainuser.UserID(cmd.CommandID),
		Name:      cmd.Name,
		Email:     cmd.Email,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Users().Save(ctx, created); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	if h.Logger != nil {
		h.Logger.Info("user registered", "user_id", created.ID)
	}

	out := dto.MapUser(created)
	return &out, nil
}

var _ commands.Handler[CreateUserCommand, *dto.User] = (*CreateUserHandler)(nil)
