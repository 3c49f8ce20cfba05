// Package registry publishes, stores and serves crates, their keywords
// and download counts.
package registry

import (
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cratebin/cratebin/internal/pkg/clock"
	"github.com/cratebin/cratebin/internal/pkg/config"
	"github.com/cratebin/cratebin/internal/pkg/counter"
	"github.com/cratebin/cratebin/internal/pkg/goroutine"
	"github.com/cratebin/cratebin/internal/pkg/instrument"
	"github.com/cratebin/cratebin/internal/pkg/messaging"
	"github.com/cratebin/cratebin/internal/pkg/router"
	"github.com/cratebin/cratebin/internal/pkg/storage"
	"github.com/cratebin/cratebin/internal/pkg/uid"
	"github.com/cratebin/cratebin/internal/pkg/validator"
	"github.com/cratebin/cratebin/internal/registry/inbound"
	"github.com/cratebin/cratebin/internal/registry/outbound/db"
	"github.com/cratebin/cratebin/internal/registry/outbound/mq"
	"github.com/cratebin/cratebin/internal/registry/usecase"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  *redis.Client              `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	Storage    storage.Storage            `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

// New wires the registry module and starts the download counter flush
// loop. The returned closer stops the loop with a final flush.
func New(dep Dependency) (io.Closer, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	dbRegistry := db.NewDB(dep.DBConn, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	downloadCounter := counter.NewRedis(dep.CacheConn, dep.Config.GetString("counter.key"))
	flusher := counter.NewFlusher(
		downloadCounter,
		dbRegistry,
		dep.Config.GetSecond("counter.flush_interval_seconds"),
		func(err error) {
			slog.Error("download counter flush failed", "error", err)
		},
	)
	flusher.Start()

	uc := usecase.New(usecase.Dependency{
		RepoDB:        dbRegistry,
		RepoMessaging: repoMsg,
		Storage:       dep.Storage,
		Counter:       downloadCounter,
		Validator:     dep.Validator,
		Config:        dep.Config,
		UID:           dep.UID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return flusher, nil
}
