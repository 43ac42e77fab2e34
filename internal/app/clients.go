package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/socratia/socratia-backend/internal/platform/logger"
	"github.com/socratia/socratia-backend/internal/platform/neo4jdb"
	"github.com/socratia/socratia-backend/internal/realtime/bus"
)

type Clients struct {
	LearningBus bus.Bus
	Neo4j       *neo4jdb.Client
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	learningBus := bus.NewNoopBus()
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		b, err := bus.NewRedisBus(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis learning bus: %w", err)
		}
		learningBus = b
	}

	// Neo4j (optional; nil when NEO4J_URI is unset)
	neo, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init neo4j client: %w", err)
	}

	return Clients{
		LearningBus: learningBus,
		Neo4j:       neo,
	}, nil
}
