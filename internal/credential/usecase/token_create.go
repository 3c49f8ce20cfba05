package usecase

import (
	"context"
	"log/slog"

	"github.com/cratebin/cratebin/internal/credential/entity"
	"github.com/cratebin/cratebin/internal/pkg/goerror"
	"github.com/cratebin/cratebin/internal/pkg/router"
	"github.com/cratebin/cratebin/internal/pkg/token"
)

type (
	TokenCreateInput struct {
		Name string `validate:"required,min=1,max=255"`
	}

	TokenCreateOutput struct {
		Token entity.APIToken
		// Plaintext is the credential itself. This is the only place it
		// ever appears; it is not recoverable afterwards.
		Plaintext string
	}
)

func (s *Usecase) TokenCreate(ctx context.Context, in TokenCreateInput) (*TokenCreateOutput, error) {
	ctx, span := s.startSpan(ctx, "TokenCreate")
	defer span.End()

	au, ok := router.GetAuth(ctx)
	if !ok {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	secret, err := token.Generate()
	if err != nil {
		// no retry and no alternative randomness source
		slog.ErrorContext(ctx, "failed to generate token secret", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	newToken := entity.NewAPIToken{
		ID:        s.uid.Generate(),
		UserID:    au.UserID,
		Name:      in.Name,
		TokenHash: secret.Hashed(),
	}

	if err := s.repoDB.CreateToken(ctx, newToken); err != nil {
		slog.ErrorContext(ctx, "failed to repo create token", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &TokenCreateOutput{
		Token: entity.APIToken{
			ID:        newToken.ID,
			UserID:    newToken.UserID,
			Name:      newToken.Name,
			CreatedAt: now,
		},
		Plaintext: secret.Plaintext(),
	}, nil
}
