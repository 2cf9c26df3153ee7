package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/insight/internal/common"
	"github.com/ternarybob/insight/internal/interfaces"
	"github.com/ternarybob/insight/internal/storage/badger"
	"github.com/ternarybob/insight/internal/storage/memory"
)

// NewJobStore creates the configured job store backend
func NewJobStore(config *common.Config, logger arbor.ILogger) (interfaces.JobStore, error) {
	switch config.Storage.Type {
	case "", "memory":
		logger.Info().Msg("Using in-memory job store")
		return memory.NewJobStore(logger), nil
	case "badger":
		db, err := badger.NewBadgerDB(logger, &config.Storage.Badger)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("path", config.Storage.Badger.Path).Msg("Using Badger job store")
		return badger.NewJobStore(db, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", config.Storage.Type)
	}
}
