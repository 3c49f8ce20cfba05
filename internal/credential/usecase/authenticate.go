package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cratebin/cratebin/internal/credential/entity"
	"github.com/cratebin/cratebin/internal/pkg/goerror"
	"github.com/cratebin/cratebin/internal/pkg/token"
)

type (
	AuthenticateInput struct {
		Plaintext string
	}

	AuthenticateOutput struct {
		Token entity.APIToken
	}
)

// Authenticate resolves a presented credential to its stored record. It
// never logs the plaintext and looks up by digest only, so credentials
// with a foreign shape are rejected before touching the database.
func (s *Usecase) Authenticate(ctx context.Context, in AuthenticateInput) (*AuthenticateOutput, error) {
	ctx, span := s.startSpan(ctx, "Authenticate")
	defer span.End()

	hashed, ok := token.Parse(in.Plaintext)
	if !ok {
		return nil, goerror.NewBusiness("Invalid token", goerror.CodeUnauthorized)
	}

	apiToken, err := s.repoDB.GetTokenByDigest(ctx, hashed)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Invalid token", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get token by digest", "error", err)
		return nil, goerror.NewServer(err)
	}

	if apiToken.Revoked {
		return nil, goerror.NewBusiness("Token has been revoked", goerror.CodeUnauthorized)
	}

	// best effort, the request does not wait on it
	tokenID := apiToken.ID
	s.goroutine.Go(context.WithoutCancel(ctx), func(gctx context.Context) error {
		touchCtx, cancel := context.WithTimeout(gctx, touchTimeout)
		defer cancel()

		if err := s.repoDB.TouchTokenLastUsed(touchCtx, tokenID); err != nil {
			slog.ErrorContext(touchCtx, "failed to touch token last used", "token_id", tokenID, "error", err)
		}
		return nil
	})

	return &AuthenticateOutput{Token: *apiToken}, nil
}
