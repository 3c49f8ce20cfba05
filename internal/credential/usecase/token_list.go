package usecase

import (
	"context"
	"log/slog"

	"github.com/cratebin/cratebin/internal/credential/entity"
	"github.com/cratebin/cratebin/internal/pkg/goerror"
	"github.com/cratebin/cratebin/internal/pkg/router"
)

type TokenListOutput struct {
	Tokens []entity.APIToken
}

func (s *Usecase) TokenList(ctx context.Context) (*TokenListOutput, error) {
	ctx, span := s.startSpan(ctx, "TokenList")
	defer span.End()

	au, ok := router.GetAuth(ctx)
	if !ok {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	tokens, err := s.repoDB.GetTokensByUserID(ctx, au.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get tokens", "user_id", au.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &TokenListOutput{Tokens: tokens}, nil
}
