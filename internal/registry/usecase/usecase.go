package usecase

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/cratebin/cratebin/internal/pkg/clock"
	"github.com/cratebin/cratebin/internal/pkg/config"
	"github.com/cratebin/cratebin/internal/pkg/counter"
	"github.com/cratebin/cratebin/internal/pkg/goroutine"
	"github.com/cratebin/cratebin/internal/pkg/instrument"
	"github.com/cratebin/cratebin/internal/pkg/storage"
	"github.com/cratebin/cratebin/internal/pkg/uid"
	"github.com/cratebin/cratebin/internal/pkg/validator"
	"github.com/cratebin/cratebin/internal/registry/entity"
)

// CratePublishedEvent announces a new version to downstream consumers.
type CratePublishedEvent struct {
	CrateID   int64
	Name      string
	Version   string
	Checksum  string
	Publisher int64
}

type repoMessaging interface {
	PublishCratePublished(ctx context.Context, msg CratePublishedEvent) error
}

type repoDB interface {
	PublishVersion(ctx context.Context, in entity.PublishData) error

	GetCrateByName(ctx context.Context, name string) (*entity.Crate, error)
	GetVersionsByCrateID(ctx context.Context, crateID int64) ([]entity.Version, error)
	GetKeywordsByCrateID(ctx context.Context, crateID int64) ([]entity.Keyword, error)
	GetVersion(ctx context.Context, name, num string) (*entity.Version, error)

	GetKeywordList(ctx context.Context, limit, offset int32) ([]entity.Keyword, int64, error)
	GetKeywordByName(ctx context.Context, name string) (*entity.Keyword, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	storage       storage.Storage
	counter       counter.Counter
	validator     validator.Validator
	cfg           config.Config
	uid           uid.NumberID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Storage       storage.Storage
	Counter       counter.Counter
	Validator     validator.Validator
	Config        config.Config
	UID           uid.NumberID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		storage:       dep.Storage,
		counter:       dep.Counter,
		validator:     dep.Validator,
		cfg:           dep.Config,
		uid:           dep.UID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("registry.usecase").Start(ctx, name)
}

func (s *Usecase) bucket() string {
	return s.cfg.GetString("storage.bucket")
}
