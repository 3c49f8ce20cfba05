// Package credential issues, lists, revokes and authenticates registry API
// tokens.
package credential

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cratebin/cratebin/internal/credential/inbound"
	"github.com/cratebin/cratebin/internal/credential/outbound/db"
	"github.com/cratebin/cratebin/internal/credential/usecase"
	"github.com/cratebin/cratebin/internal/pkg/clock"
	"github.com/cratebin/cratebin/internal/pkg/config"
	"github.com/cratebin/cratebin/internal/pkg/goroutine"
	"github.com/cratebin/cratebin/internal/pkg/instrument"
	"github.com/cratebin/cratebin/internal/pkg/router"
	"github.com/cratebin/cratebin/internal/pkg/uid"
	"github.com/cratebin/cratebin/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

// Module owns the credential usecases. It doubles as the router's token
// verifier, which is why it exists before the router and registers its
// endpoints afterwards.
type Module struct {
	uc *usecase.Usecase
}

func New(dep Dependency) (*Module, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	dbToken := db.NewDB(dep.DBConn, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:     dbToken,
		Validator:  dep.Validator,
		Config:     dep.Config,
		UID:        dep.UID,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
		Goroutine:  dep.Goroutine,
	})

	return &Module{uc: uc}, nil
}

// VerifyToken implements router.TokenVerifier.
func (m *Module) VerifyToken(ctx context.Context, plaintext string) (router.AuthUser, error) {
	out, err := m.uc.Authenticate(ctx, usecase.AuthenticateInput{Plaintext: plaintext})
	if err != nil {
		return router.AuthUser{}, err
	}

	return router.AuthUser{
		TokenID:   out.Token.ID,
		UserID:    out.Token.UserID,
		TokenName: out.Token.Name,
	}, nil
}

// RegisterRoutes attaches the token management endpoints.
func (m *Module) RegisterRoutes(r *router.Router) {
	inbound.RegisterHTTPEndpoint(r, m.uc)
}
