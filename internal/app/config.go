package app

import (
	"strings"
	"time"

	"github.com/yungbote/tandem-backend/internal/matching"
	"github.com/yungbote/tandem-backend/internal/platform/envutil"
	"github.com/yungbote/tandem-backend/internal/services"
)

type VectorProvider string

const (
	VectorProviderPinecone VectorProvider = "pinecone"
	VectorProviderLinear   VectorProvider = "linear"
)

type Config struct {
	Port             string
	AllowOrigins     []string
	AllowCredentials bool
	VectorProvider   VectorProvider

	Generator matching.GeneratorConfig
	Allocator matching.AllocatorConfig
	Embedding services.EmbeddingConfig
	Pipeline  services.PipelineConfig
}

func LoadConfig() Config {
	provider := VectorProvider(strings.ToLower(envutil.Str("VECTOR_PROVIDER", string(VectorProviderLinear))))
	if provider != VectorProviderPinecone {
		provider = VectorProviderLinear
	}

	generator := matching.DefaultGeneratorConfig()
	generator.ComplementaryLimit = envutil.Int("CANDIDATES_COMPLEMENTARY_LIMIT", generator.ComplementaryLimit)
	generator.GoalsLimit = envutil.Int("CANDIDATES_GOALS_LIMIT", generator.GoalsLimit)
	generator.ValuesLimit = envutil.Int("CANDIDATES_VALUES_LIMIT", generator.ValuesLimit)

	allocator := matching.DefaultAllocatorConfig()
	allocator.WeeklyCap = envutil.Int("WEEKLY_MATCH_CAP", allocator.WeeklyCap)
	allocator.PerRunCap = envutil.Int("PER_RUN_MATCH_CAP", allocator.PerRunCap)

	embedding := services.DefaultEmbeddingConfig()
	embedding.MaxInputChars = envutil.Int("EMBED_MAX_INPUT_CHARS", embedding.MaxInputChars)
	embedding.BatchDelay = time.Duration(envutil.Int("EMBED_BATCH_DELAY_MS", int(embedding.BatchDelay/time.Millisecond))) * time.Millisecond

	pipeline := services.DefaultPipelineConfig()
	pipeline.BatchSize = envutil.Int("PIPELINE_BATCH_SIZE", pipeline.BatchSize)
	pipeline.ExplorationFraction = envutil.Float("EXPLORATION_FRACTION", pipeline.ExplorationFraction)
	pipeline.MatchTTL = time.Duration(envutil.Int("MATCH_TTL_DAYS", 14)) * 24 * time.Hour

	var origins []string
	if raw := envutil.Str("CORS_ALLOW_ORIGINS", ""); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return Config{
		Port:             envutil.Str("PORT", "8080"),
		AllowOrigins:     origins,
		AllowCredentials: envutil.Bool("CORS_ALLOW_CREDENTIALS", true),
		VectorProvider:   provider,
		Generator:        generator,
		Allocator:        allocator,
		Embedding:        embedding,
		Pipeline:         pipeline,
	}
}
