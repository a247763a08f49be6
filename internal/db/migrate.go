package db

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"gatepass/internal/model"
)

// Models lists every persisted model in creation order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Product{},
		&model.GatePass{},
		&model.GatePassItem{},
	}
}

// Migrate creates or updates the users, products, gate_passes and
// gate_pass_items tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops all tables, children first. Missing tables are not an error.
func Reset(db *gorm.DB, logger *slog.Logger) {
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			logger.Warn("failed to drop table (may not exist)", "err", err)
		}
	}
	logger.Info("tables dropped")
}
