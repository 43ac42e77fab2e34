package ontology

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/socratia/socratia-backend/internal/platform/logger"
	"github.com/socratia/socratia-backend/internal/platform/neo4jdb"
)

type neo4jSource struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewNeo4jSource(client *neo4jdb.Client, baseLog *logger.Logger) NodeSource {
	return &neo4jSource{
		client: client,
		log:    baseLog.With("source", "OntologyNeo4j"),
	}
}

func (s *neo4jSource) GetNode(ctx context.Context, id string) (*Node, error) {
	if s == nil || s.client == nil || s.client.Driver == nil {
		return nil, fmt.Errorf("ontology: neo4j source not initialized")
	}
	session := s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.client.Database,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (n:InquiryNode {id: $id})
			RETURN n.id AS id, n.type AS type, n.label AS label,
			       coalesce(n.clarity, 0.5) AS clarity,
			       coalesce(n.depth, 0.0) AS depth
			LIMIT 1
		`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return rec, nil
	})
	if err != nil {
		// Single() errors when no row matched; treat as not found.
		s.log.Debug("node lookup returned nothing", "node_id", id, "error", err)
		return nil, nil
	}

	rec, ok := result.(*neo4j.Record)
	if !ok || rec == nil {
		return nil, nil
	}
	node := &Node{ID: id}
	if v, ok := rec.Get("type"); ok {
		if s, ok := v.(string); ok {
			node.Type = s
		}
	}
	if v, ok := rec.Get("label"); ok {
		if s, ok := v.(string); ok {
			node.Label = s
		}
	}
	if v, ok := rec.Get("clarity"); ok {
		if f, ok := v.(float64); ok {
			node.Clarity = f
		}
	}
	if v, ok := rec.Get("depth"); ok {
		if f, ok := v.(float64); ok {
			node.Depth = f
		}
	}
	return node, nil
}
