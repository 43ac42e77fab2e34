package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/socratia/socratia-backend/internal/db"
	"github.com/socratia/socratia-backend/internal/handlers"
	"github.com/socratia/socratia-backend/internal/learning/rules"
	"github.com/socratia/socratia-backend/internal/middleware"
	"github.com/socratia/socratia-backend/internal/observability"
	"github.com/socratia/socratia-backend/internal/ontology"
	"github.com/socratia/socratia-backend/internal/platform/envutil"
	"github.com/socratia/socratia-backend/internal/platform/logger"
	"github.com/socratia/socratia-backend/internal/realtime"
	"github.com/socratia/socratia-backend/internal/repos"
	"github.com/socratia/socratia-backend/internal/server"
	"github.com/socratia/socratia-backend/internal/services"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Engine   *rules.Engine
	Strategy services.StrategyService
	Metrics  *observability.Metrics

	clients Clients
	cancel  context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg := LoadConfig(log)

	database, err := db.New(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := database.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	theDB := database.DB()

	clients, err := wireClients(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	// Repos
	interactionRepo := repos.NewInteractionEventRepo(theDB, log)
	feedbackRepo := repos.NewFeedbackEventRepo(theDB, log)

	// Engine
	notifier := services.NewLearningNotifier(log, clients.LearningBus)
	engine := rules.NewEngine(cfg.Engine, log, notifier)

	// Ontology
	var nodes ontology.NodeSource
	if clients.Neo4j != nil {
		nodes = ontology.NewNeo4jSource(clients.Neo4j, log)
	}

	// Services
	strategy := services.NewStrategyService(theDB, log, engine, nodes, interactionRepo, feedbackRepo)

	// Observability
	metrics := observability.NewMetrics()
	metrics.RegisterSampler(func(w io.Writer) error {
		return writeEngineMetrics(w, engine)
	})

	// Handlers / router
	strategyHandler := handlers.NewStrategyHandler(strategy)
	telemetryHandler := handlers.NewTelemetryHandler(metrics)
	metricsMiddleware := middleware.NewMetricsMiddleware(metrics)
	router := server.NewRouter(server.RouterConfig{
		StrategyHandler:   strategyHandler,
		TelemetryHandler:  telemetryHandler,
		MetricsMiddleware: metricsMiddleware,
	})

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Engine:   engine,
		Strategy: strategy,
		Metrics:  metrics,
		clients:  clients,
	}, nil
}

func writeEngineMetrics(w io.Writer, engine *rules.Engine) error {
	snap := engine.RuleStatistics()
	lines := []struct {
		name string
		help string
		val  float64
	}{
		{"rule_engine_rules_total", "Live rules in the population", float64(snap.TotalRules)},
		{"rule_engine_rules_generated_total", "Rules generated since start", float64(snap.Metrics.RulesGenerated)},
		{"rule_engine_rules_pruned_total", "Rules pruned since start", float64(snap.Metrics.RulesPruned)},
		{"rule_engine_adaptation_events_total", "Rule adaptations from feedback", float64(snap.Metrics.AdaptationEvents)},
		{"rule_engine_learning_cycles_total", "Completed learning cycles", float64(snap.Metrics.LearningCycles)},
		{"rule_engine_evaluation_errors_total", "Rules skipped for condition/action failures", float64(snap.Metrics.EvaluationErrors)},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s %f\n", l.name, l.help, l.name, l.name, l.val); err != nil {
			return err
		}
	}
	return nil
}

// Start launches the background learning loop and, when enabled, a local
// subscriber that mirrors published learning events into the log.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.Engine.Start(ctx)

	if envutil.Bool("LEARNING_BUS_DEBUG", false) && a.clients.LearningBus != nil {
		err := a.clients.LearningBus.StartForwarder(ctx, func(m realtime.LearningEvent) {
			a.Log.Debug("learning event", "kind", m.Kind, "payload_bytes", len(m.Payload))
		})
		if err != nil {
			a.Log.Warn("learning bus forwarder", "error", err)
		}
	}
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

// Close stops the learning loop (bounded wait), flushes a final snapshot
// and releases clients.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Engine != nil {
		if err := a.Engine.Stop(10 * time.Second); err != nil {
			a.Log.Warn("engine stop", "error", err)
		}
	}
	if a.clients.LearningBus != nil {
		_ = a.clients.LearningBus.Close()
	}
	if a.clients.Neo4j != nil {
		_ = a.clients.Neo4j.Close(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
