package rules

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/socratia/socratia-backend/internal/platform/logger"
)

// snapshotVersion guards the gob layout. Bump it together with a migration
// when the Rule shape changes; loaders reject versions they do not know.
const snapshotVersion = 1

const (
	rulesFileName   = "dynamic_rules.gob"
	metricsFileName = "rule_metrics.json"
)

type snapshotDoc struct {
	Version int
	SavedAt time.Time
	Rules   []Rule
}

// SnapshotStore persists the rule population (binary) and the aggregate
// metrics (JSON) under one model directory. Load failures are tolerated by
// callers: the engine starts empty and keeps going.
type SnapshotStore struct {
	dir string
	log *logger.Logger
}

func NewSnapshotStore(dir string, baseLog *logger.Logger) *SnapshotStore {
	return &SnapshotStore{
		dir: dir,
		log: baseLog.With("component", "SnapshotStore"),
	}
}

// Load returns the persisted population and metrics. Missing or corrupt
// files yield empty values, never an error the caller must handle.
func (s *SnapshotStore) Load() ([]Rule, MetricsSnapshot) {
	var loaded []Rule
	rulesPath := filepath.Join(s.dir, rulesFileName)
	f, err := os.Open(rulesPath)
	switch {
	case os.IsNotExist(err):
		s.log.Info("no rule snapshot found, starting empty", "path", rulesPath)
	case err != nil:
		s.log.Warn("rule snapshot unreadable, starting empty", "path", rulesPath, "error", err)
	default:
		var doc snapshotDoc
		decodeErr := gob.NewDecoder(f).Decode(&doc)
		_ = f.Close()
		switch {
		case decodeErr != nil:
			s.log.Warn("rule snapshot corrupt, starting empty", "path", rulesPath, "error", decodeErr)
		case doc.Version != snapshotVersion:
			s.log.Warn("rule snapshot version mismatch, starting empty",
				"path", rulesPath, "found", doc.Version, "want", snapshotVersion)
		default:
			loaded = doc.Rules
			s.log.Info("loaded rule snapshot", "rules", len(loaded), "saved_at", doc.SavedAt)
		}
	}

	var metrics MetricsSnapshot
	metricsPath := filepath.Join(s.dir, metricsFileName)
	raw, err := os.ReadFile(metricsPath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("metrics document unreadable", "path", metricsPath, "error", err)
		}
		return loaded, metrics
	}
	if err := json.Unmarshal(raw, &metrics); err != nil {
		s.log.Warn("metrics document corrupt, resetting", "path", metricsPath, "error", err)
		return loaded, MetricsSnapshot{}
	}
	return loaded, metrics
}

// Save writes both documents atomically (temp file + rename). On failure
// the in-memory population stays the source of truth until the next cycle.
func (s *SnapshotStore) Save(population []Rule, metrics MetricsSnapshot) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("snapshot dir: %w", err)
	}

	doc := snapshotDoc{Version: snapshotVersion, SavedAt: time.Now().UTC(), Rules: population}
	if err := s.writeGob(filepath.Join(s.dir, rulesFileName), doc); err != nil {
		return fmt.Errorf("write rule snapshot: %w", err)
	}

	raw, err := json.MarshalIndent(metrics, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	if err := s.writeFile(filepath.Join(s.dir, metricsFileName), raw); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

func (s *SnapshotStore) writeGob(path string, doc snapshotDoc) error {
	tmp, err := os.CreateTemp(s.dir, ".rules-*")
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(tmp).Encode(doc); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *SnapshotStore) writeFile(path string, raw []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".metrics-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
