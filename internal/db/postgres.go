package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	types "github.com/ledazaf/ms-order-api/internal/domain"
	"github.com/ledazaf/ms-order-api/internal/pkg/logger"
	"github.com/ledazaf/ms-order-api/internal/platform/envutil"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	host := envutil.String("POSTGRES_HOST", "localhost")
	port := envutil.String("POSTGRES_PORT", "5432")
	user := envutil.String("POSTGRES_USER", "postgres")
	password := envutil.String("POSTGRES_PASSWORD", "")
	name := envutil.String("POSTGRES_NAME", "orders")
	sslmode := envutil.String("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, name, sslmode)

	log.Info("Connecting to Postgres...", "host", host, "port", port, "db", name)
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

// AutoMigrateAll creates the four domain tables and wires the FK policies the
// delete semantics depend on: category and product references are restricted,
// item rows follow their order.
func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.Category{},
		&types.Product{},
		&types.Order{},
		&types.OrderItem{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		name string
		sql  string
	}{
		{
			name: "fk_products_id_category",
			sql: `ALTER TABLE "products"
				ADD CONSTRAINT "fk_products_id_category"
				FOREIGN KEY ("id_category")
				REFERENCES "categories"("id_category")
				ON DELETE RESTRICT`,
		},
		{
			name: "fk_order_items_id_order",
			sql: `ALTER TABLE "order_items"
				ADD CONSTRAINT "fk_order_items_id_order"
				FOREIGN KEY ("id_order")
				REFERENCES "orders"("id_order")
				ON DELETE CASCADE`,
		},
		{
			name: "fk_order_items_id_product",
			sql: `ALTER TABLE "order_items"
				ADD CONSTRAINT "fk_order_items_id_product"
				FOREIGN KEY ("id_product")
				REFERENCES "products"("id_product")
				ON DELETE RESTRICT`,
		},
	}
	for _, c := range constraints {
		var exists bool
		if err := s.db.Raw(
			`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, c.name,
		).Scan(&exists).Error; err != nil {
			return fmt.Errorf("check constraint %s: %w", c.name, err)
		}
		if exists {
			continue
		}
		if err := s.db.Exec(c.sql).Error; err != nil {
			return fmt.Errorf("add constraint %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
