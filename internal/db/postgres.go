package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/tandem-backend/internal/platform/envutil"
	"github.com/yungbote/tandem-backend/internal/platform/logger"
	"github.com/yungbote/tandem-backend/internal/types"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	host := envutil.Str("POSTGRES_HOST", "localhost")
	port := envutil.Str("POSTGRES_PORT", "5432")
	user := envutil.Str("POSTGRES_USER", "postgres")
	password := envutil.Str("POSTGRES_PASSWORD", "")
	name := envutil.Str("POSTGRES_NAME", "tandem")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

	serviceLog.Info("Connecting to Postgres...", "host", host, "db", name)
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := s.db.AutoMigrate(
		&types.UserProfile{},
		&types.ProfileEmbedding{},
		&types.Match{},
	); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}

	// Partial unique index enforcing at most one active match per unordered
	// pair. The allocator's ActivePairExists check races against itself when
	// two users in the same batch allocate each other; the index is the
	// backstop that makes the second insert a no-op.
	if err := s.db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_match_active_pair ON "match" (user_a_id, user_b_id) WHERE status IN ('pending','accepted');`,
	).Error; err != nil {
		s.log.Error("Creating active-pair unique index failed", "error", err)
		return err
	}
	return nil
}
