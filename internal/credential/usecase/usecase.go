package usecase

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/cratebin/cratebin/internal/credential/entity"
	"github.com/cratebin/cratebin/internal/pkg/clock"
	"github.com/cratebin/cratebin/internal/pkg/config"
	"github.com/cratebin/cratebin/internal/pkg/goroutine"
	"github.com/cratebin/cratebin/internal/pkg/instrument"
	"github.com/cratebin/cratebin/internal/pkg/token"
	"github.com/cratebin/cratebin/internal/pkg/uid"
	"github.com/cratebin/cratebin/internal/pkg/validator"
)

// touchTimeout bounds the background last-used update after a successful
// authentication.
const touchTimeout = 5 * time.Second

type repoDB interface {
	CreateToken(ctx context.Context, in entity.NewAPIToken) error
	GetTokensByUserID(ctx context.Context, userID int64) ([]entity.APIToken, error)
	GetTokenByDigest(ctx context.Context, digest token.HashedToken) (*entity.APIToken, error)
	RevokeToken(ctx context.Context, id, userID int64) error
	TouchTokenLastUsed(ctx context.Context, id int64) error
}

type Usecase struct {
	repoDB    repoDB
	validator validator.Validator
	cfg       config.Config
	uid       uid.NumberID
	clock     clock.Clocker
	ins       instrument.Instrumentation
	goroutine *goroutine.Manager
}

type Dependency struct {
	RepoDB     repoDB
	Validator  validator.Validator
	Config     config.Config
	UID        uid.NumberID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
	Goroutine  *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		validator: dep.Validator,
		cfg:       dep.Config,
		uid:       dep.UID,
		clock:     dep.Clock,
		ins:       dep.Instrument,
		goroutine: dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("credential.usecase").Start(ctx, name)
}
