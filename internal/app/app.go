package app

import (
	"context"
	"io"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cratebin/cratebin/internal/pkg/clock"
	"github.com/cratebin/cratebin/internal/pkg/config"
	"github.com/cratebin/cratebin/internal/pkg/goroutine"
	"github.com/cratebin/cratebin/internal/pkg/instrument"
	"github.com/cratebin/cratebin/internal/pkg/messaging"
	"github.com/cratebin/cratebin/internal/pkg/router"
	"github.com/cratebin/cratebin/internal/pkg/storage"
	"github.com/cratebin/cratebin/internal/pkg/uid"
	"github.com/cratebin/cratebin/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	messaging messaging.Publisher
	storage   storage.Storage

	// modules
	registryCloser io.Closer

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initDatabase()
	app.initCache()
	app.initStorage()
	app.initMessaging()
	app.initModules()
	app.initHTTPServer()
	app.initClosers()

	return app
}
