package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/socratia/socratia-backend/internal/platform/envutil"
	"github.com/socratia/socratia-backend/internal/platform/logger"
	"github.com/socratia/socratia-backend/internal/types"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New opens Postgres when POSTGRES_HOST is configured, otherwise a local
// sqlite file so the engine runs standalone in development.
func New(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	host := envutil.String("POSTGRES_HOST", "")
	var (
		conn *gorm.DB
		err  error
	)
	if host != "" {
		port := envutil.String("POSTGRES_PORT", "5432")
		user := envutil.String("POSTGRES_USER", "postgres")
		password := envutil.String("POSTGRES_PASSWORD", "")
		name := envutil.String("POSTGRES_NAME", "socratia")
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

		serviceLog.Info("Connecting to Postgres...", "host", host, "db", name)
		conn, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
	} else {
		path := envutil.String("SQLITE_PATH", "socratia.db")
		serviceLog.Info("POSTGRES_HOST unset, using sqlite", "path", path)
		conn, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
	}

	return &Service{db: conn, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating event tables...")
	if err := s.db.AutoMigrate(
		&types.InteractionEvent{},
		&types.FeedbackEvent{},
	); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
