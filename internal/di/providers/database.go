package providers

import (
	"github.com/samber/do/v2"

	"github.com/taskhubapp/taskhub-server/internal/config"
	"github.com/taskhubapp/taskhub-server/internal/logger"
	"github.com/taskhubapp/taskhub-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbFile := cfg.DatabaseFile()
	db, err := sqlite.Open(dbFile, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbFile)

	return &StoreHandle{Store: db}, nil
}
