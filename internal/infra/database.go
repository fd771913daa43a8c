package infra

import (
	"fmt"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate for
// the two inventory tables, then applies the constraints AutoMigrate cannot
// express (non-negative stock, append-only audit trail).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates/updates the schema. Also used by integration tests
// against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.ChangeRecord{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that GORM tags cannot express.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Quantity is never negative, independent of application-level guards.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_products_quantity_nonneg') THEN
		    ALTER TABLE products ADD CONSTRAINT chk_products_quantity_nonneg CHECK (quantity >= 0);
		  END IF;
		END $$`,
		// The audit trail is append-only: block UPDATE and DELETE at the DB layer.
		`CREATE OR REPLACE FUNCTION reject_change_record_mutation() RETURNS trigger AS $$
		BEGIN
		  RAISE EXCEPTION 'change_records is append-only';
		END;
		$$ LANGUAGE plpgsql`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_change_records_append_only') THEN
		    CREATE TRIGGER trg_change_records_append_only
		        BEFORE UPDATE OR DELETE ON change_records
		        FOR EACH ROW EXECUTE FUNCTION reject_change_record_mutation();
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}
