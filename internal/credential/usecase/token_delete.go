package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cratebin/cratebin/internal/pkg/goerror"
	"github.com/cratebin/cratebin/internal/pkg/router"
)

type TokenDeleteInput struct {
	ID int64 `validate:"required,gt=0"`
}

func (s *Usecase) TokenDelete(ctx context.Context, in TokenDeleteInput) error {
	ctx, span := s.startSpan(ctx, "TokenDelete")
	defer span.End()

	au, ok := router.GetAuth(ctx)
	if !ok {
		return goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	err := s.repoDB.RevokeToken(ctx, in.ID, au.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "token not found", "token_id", in.ID, "user_id", au.UserID)
		return goerror.NewBusiness("token not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo revoke token", "token_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
