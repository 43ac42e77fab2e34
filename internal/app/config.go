package app

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/socratia/socratia-backend/internal/learning/rules"
	"github.com/socratia/socratia-backend/internal/platform/envutil"
	"github.com/socratia/socratia-backend/internal/platform/logger"
)

type Config struct {
	Port   string
	Engine rules.Config
}

// engineFileConfig is the optional YAML tuning file (ENGINE_CONFIG_PATH).
// Env variables override whatever the file sets.
type engineFileConfig struct {
	ModelDir                string  `yaml:"model_dir"`
	AdaptationThreshold     float64 `yaml:"adaptation_threshold"`
	PruningThreshold        float64 `yaml:"pruning_threshold"`
	MaxRulesPerUser         int     `yaml:"max_rules_per_user"`
	LearningIntervalSeconds int     `yaml:"learning_interval_seconds"`
	OptimizeIntervalSeconds int     `yaml:"optimize_interval_seconds"`
	BackoffIntervalSeconds  int     `yaml:"backoff_interval_seconds"`
	InteractionBufferSize   int     `yaml:"interaction_buffer_size"`
	FeedbackBufferSize      int     `yaml:"feedback_buffer_size"`
}

func LoadConfig(log *logger.Logger) Config {
	engine := rules.DefaultConfig()

	if path := envutil.String("ENGINE_CONFIG_PATH", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Warn("engine config file unreadable, using defaults", "path", path, "error", err)
		} else {
			var fc engineFileConfig
			if err := yaml.Unmarshal(raw, &fc); err != nil {
				log.Warn("engine config file invalid, using defaults", "path", path, "error", err)
			} else {
				applyFileConfig(&engine, fc)
				log.Info("engine config loaded", "path", path)
			}
		}
	}

	engine.ModelDir = envutil.String("ENGINE_MODEL_DIR", engine.ModelDir)
	engine.AdaptationThreshold = envutil.Float("ENGINE_ADAPTATION_THRESHOLD", engine.AdaptationThreshold)
	engine.PruningThreshold = envutil.Float("ENGINE_PRUNING_THRESHOLD", engine.PruningThreshold)
	engine.MaxRulesPerUser = envutil.Int("ENGINE_MAX_RULES_PER_USER", engine.MaxRulesPerUser)
	engine.LearningInterval = envutil.Duration("ENGINE_LEARNING_INTERVAL", engine.LearningInterval)
	engine.OptimizeInterval = envutil.Duration("ENGINE_OPTIMIZE_INTERVAL", engine.OptimizeInterval)
	engine.BackoffInterval = envutil.Duration("ENGINE_BACKOFF_INTERVAL", engine.BackoffInterval)
	engine.InteractionBufferSize = envutil.Int("ENGINE_INTERACTION_BUFFER", engine.InteractionBufferSize)
	engine.FeedbackBufferSize = envutil.Int("ENGINE_FEEDBACK_BUFFER", engine.FeedbackBufferSize)

	return Config{
		Port:   envutil.String("PORT", "8080"),
		Engine: engine,
	}
}

func applyFileConfig(engine *rules.Config, fc engineFileConfig) {
	if fc.ModelDir != "" {
		engine.ModelDir = fc.ModelDir
	}
	if fc.AdaptationThreshold > 0 {
		engine.AdaptationThreshold = fc.AdaptationThreshold
	}
	if fc.PruningThreshold > 0 {
		engine.PruningThreshold = fc.PruningThreshold
	}
	if fc.MaxRulesPerUser > 0 {
		engine.MaxRulesPerUser = fc.MaxRulesPerUser
	}
	if fc.LearningIntervalSeconds > 0 {
		engine.LearningInterval = time.Duration(fc.LearningIntervalSeconds) * time.Second
	}
	if fc.OptimizeIntervalSeconds > 0 {
		engine.OptimizeInterval = time.Duration(fc.OptimizeIntervalSeconds) * time.Second
	}
	if fc.BackoffIntervalSeconds > 0 {
		engine.BackoffInterval = time.Duration(fc.BackoffIntervalSeconds) * time.Second
	}
	if fc.InteractionBufferSize > 0 {
		engine.InteractionBufferSize = fc.InteractionBufferSize
	}
	if fc.FeedbackBufferSize > 0 {
		engine.FeedbackBufferSize = fc.FeedbackBufferSize
	}
}
