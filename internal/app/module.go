package app

import (
	"log/slog"
	"os"

	"github.com/cratebin/cratebin/internal/credential"
	"github.com/cratebin/cratebin/internal/pkg/router"
	"github.com/cratebin/cratebin/internal/registry"
)

// initModules builds the domain modules around the router. The credential
// module is constructed first because the router needs it as the token
// verifier; its endpoints are registered once the router exists.
func (a *App) initModules() {
	credentialMod, err := credential.New(credential.Dependency{
		DBConn:     a.dbConn,
		Goroutine:  a.goroutine,
		Config:     a.config,
		Instrument: a.ins,
		UID:        a.uid,
		Clock:      a.clock,
		Validator:  a.validator,
	})
	if err != nil {
		slog.Error("failed to init module credential", "error", err)
		os.Exit(1)
	}

	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Verifier:   credentialMod,
		Instrument: a.ins,
	})

	credentialMod.RegisterRoutes(a.router)

	registryCloser, err := registry.New(registry.Dependency{
		DBConn:     a.dbConn,
		CacheConn:  a.cacheConn,
		Goroutine:  a.goroutine,
		Router:     a.router,
		Messaging:  a.messaging,
		Storage:    a.storage,
		Config:     a.config,
		Instrument: a.ins,
		UID:        a.uid,
		Clock:      a.clock,
		Validator:  a.validator,
	})
	if err != nil {
		slog.Error("failed to init module registry", "error", err)
		os.Exit(1)
	}
	a.registryCloser = registryCloser
}
