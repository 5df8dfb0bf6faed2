package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/skincareshop/config"
	"gorm.io/gorm"
)

// OpenInMemory opens a private, migrated SQLite database held in memory.
// Used by tests and by `-driver sqlite` smoke runs.
func OpenInMemory(log zerolog.Logger, queries *QueryLogger) (*gorm.DB, error) {
	cfg := &config.DatabaseConfig{
		Driver: "sqlite",
		Source: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
	db, err := Open(cfg, log, queries)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db, log); err != nil {
		return nil, err
	}
	return db, nil
}
