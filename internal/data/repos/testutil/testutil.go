package testutil

import (
	"os"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	types "github.com/ledazaf/ms-order-api/internal/domain"
	"github.com/ledazaf/ms-order-api/internal/pkg/logger"
)

// OpenTestDB connects to the database named by TEST_POSTGRES_DSN and runs the
// schema migration. Tests that need a real database skip when the variable is
// unset, so the unit suite stays runnable without infrastructure.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping database-backed test")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&types.Category{},
		&types.Product{},
		&types.Order{},
		&types.OrderItem{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// WithRollback runs fn inside a transaction that always rolls back, keeping
// the shared test database clean between tests.
func WithRollback(t *testing.T, db *gorm.DB, fn func(tx *gorm.DB)) {
	t.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		t.Fatalf("begin test tx: %v", tx.Error)
	}
	defer tx.Rollback()
	fn(tx)
}

// TestLogger builds a quiet logger suitable for tests.
func TestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("build test logger: %v", err)
	}
	return log
}

// CleanTables truncates all domain tables. Use it in database-backed tests
// that run concurrent writers and therefore cannot live inside WithRollback.
func CleanTables(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := db.Exec("TRUNCATE order_items, orders, products, categories RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
