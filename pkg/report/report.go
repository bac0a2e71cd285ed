package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/memlabgo/memlab/pkg/config"
	"github.com/memlabgo/memlab/pkg/prometheus/metrics"
)

// Observations is the end-of-run summary persisted as YAML when reporting is
// enabled.
type Observations struct {
	FinishedAt time.Time        `yaml:"finished_at"`
	Outcome    string           `yaml:"outcome"`
	Metrics    metrics.Snapshot `yaml:"metrics"`
}

type Writer struct {
	cfg config.Report
	dir string
}

func NewWriter(cfg config.Report, dir string) *Writer {
	return &Writer{cfg: cfg, dir: dir}
}

// Write serializes the snapshot next to the demo's working files. No-op when
// reporting is disabled.
func (w *Writer) Write(outcome string, snap metrics.Snapshot) error {
	if !w.cfg.Enabled {
		return nil
	}

	obs := Observations{
		FinishedAt: time.Now().UTC(),
		Outcome:    outcome,
		Metrics:    snap,
	}

	raw, err := yaml.Marshal(obs)
	if err != nil {
		return fmt.Errorf("marshal observations: %w", err)
	}

	path := filepath.Join(w.dir, w.cfg.Path)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write observations %q: %w", path, err)
	}

	log.Info().Msgf("[report] observations written to %q", path)
	return nil
}
