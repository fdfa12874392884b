package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/tandem-backend/internal/db"
	"github.com/yungbote/tandem-backend/internal/matching"
	errs "github.com/yungbote/tandem-backend/internal/pkg/errors"
	"github.com/yungbote/tandem-backend/internal/platform/logger"
	"github.com/yungbote/tandem-backend/internal/platform/openai"
	"github.com/yungbote/tandem-backend/internal/platform/pinecone"
	"github.com/yungbote/tandem-backend/internal/platform/redislock"
	"github.com/yungbote/tandem-backend/internal/repos"
	"github.com/yungbote/tandem-backend/internal/services"
	"github.com/yungbote/tandem-backend/internal/vectorindex"
)

// App holds everything a tandem entrypoint needs, wired once.
type App struct {
	Log      *logger.Logger
	Config   Config
	Pipeline services.PipelineService
	Matches  services.MatchService
	Locker   redislock.Locker
}

// logAlertSink routes critical-severity errors to the log. No automatic
// remediation happens beyond this.
type logAlertSink struct {
	log *logger.Logger
}

func (s *logAlertSink) Alert(kind errs.Kind, message string, err error) {
	s.log.Error("CRITICAL error reported",
		"kind", kind,
		"message", message,
		"error", err,
	)
}

func Bootstrap(log *logger.Logger) (*App, error) {
	cfg := LoadConfig()

	postgres, err := db.NewPostgresService(log)
	if err != nil {
		return nil, fmt.Errorf("postgres init: %w", err)
	}
	if err := postgres.AutoMigrateAll(); err != nil {
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}
	gdb := postgres.DB()

	profileRepo := repos.NewProfileRepo(gdb, log)
	embeddingRepo := repos.NewEmbeddingRepo(gdb, log)
	matchRepo := repos.NewMatchRepo(gdb, log)

	aiClient, err := openai.NewClient(log)
	if err != nil {
		return nil, fmt.Errorf("openai init: %w", err)
	}

	var (
		index    matching.VectorIndex
		upserter services.VectorUpserter
	)
	switch cfg.VectorProvider {
	case VectorProviderPinecone:
		pc, err := pinecone.New(log, pinecone.Config{
			APIKey: strings.TrimSpace(os.Getenv("PINECONE_API_KEY")),
		})
		if err != nil {
			return nil, fmt.Errorf("pinecone init: %w", err)
		}
		store, err := pinecone.NewVectorStore(log, pc)
		if err != nil {
			return nil, fmt.Errorf("pinecone vector store init: %w", err)
		}
		pcIndex, err := vectorindex.NewPineconeIndex(log, store)
		if err != nil {
			return nil, err
		}
		index = pcIndex
		upserter = pcIndex
	default:
		linear, err := vectorindex.NewLinearIndex(log, embeddingRepo)
		if err != nil {
			return nil, err
		}
		index = linear
		log.Warn("Using linear-scan vector index; fine for small populations only")
	}

	var locker redislock.Locker
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		locker, err = redislock.New(log)
		if err != nil {
			return nil, fmt.Errorf("redis init: %w", err)
		}
	} else {
		log.Warn("REDIS_ADDR not set; population runs will not be mutually excluded")
	}

	classifier := errs.NewClassifier(&logAlertSink{log: log.With("component", "AlertSink")})

	embeddingService, err := services.NewEmbeddingService(log, aiClient, embeddingRepo, upserter, cfg.Embedding)
	if err != nil {
		return nil, err
	}
	matchService, err := services.NewMatchService(log, matchRepo)
	if err != nil {
		return nil, err
	}

	generator := matching.NewCandidateGenerator(log, index, cfg.Generator)
	allocator := matching.NewAllocator(log, cfg.Allocator)

	pipeline, err := services.NewPipelineService(
		log,
		profileRepo,
		matchRepo,
		embeddingService,
		generator,
		allocator,
		classifier,
		locker,
		cfg.Pipeline,
	)
	if err != nil {
		return nil, err
	}

	return &App{
		Log:      log,
		Config:   cfg,
		Pipeline: pipeline,
		Matches:  matchService,
		Locker:   locker,
	}, nil
}
