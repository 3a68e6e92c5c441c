// Package backup writes timestamped copies of the topology document to a
// directory, on demand or on a cron schedule.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/topology-backend/internal/logger"
	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/domain"
	"github.com/robfig/cron/v3"
)

const (
	filePrefix = "topology-"
	fileSuffix = ".json"
	// timeLayout sorts lexically in chronological order.
	timeLayout = "20060102T150405.000Z"
)

// Source supplies the document to back up.
type Source interface {
	ListGraph(ctx context.Context) (*domain.Document, error)
}

type Backup struct {
	source Source
	dir    string
	keep   int
	now    func() time.Time
}

// New creates a Backup. keep <= 0 keeps every file.
func New(source Source, dir string, keep int) *Backup {
	return &Backup{
		source: source,
		dir:    dir,
		keep:   keep,
		now:    time.Now,
	}
}

// Run writes one backup file and prunes old ones. It returns the new path.
func (b *Backup) Run(ctx context.Context) (string, error) {
	doc, err := b.source.ListGraph(ctx)
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("backup: failed to marshal document: %w", err)
	}
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return "", fmt.Errorf("backup: failed to create %s: %w", b.dir, err)
	}

	path := filepath.Join(b.dir, filePrefix+b.now().UTC().Format(timeLayout)+fileSuffix)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("backup: failed to write %s: %w", path, err)
	}

	if err := b.prune(); err != nil {
		logger.Warn("backup prune failed", "dir", b.dir, "err", err)
	}
	return path, nil
}

// List returns backup file paths, oldest first.
func (b *Backup) List() ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		out = append(out, filepath.Join(b.dir, name))
	}
	sort.Strings(out)
	return out, nil
}

func (b *Backup) prune() error {
	if b.keep <= 0 {
		return nil
	}
	files, err := b.List()
	if err != nil {
		return err
	}
	for len(files) > b.keep {
		if err := os.Remove(files[0]); err != nil {
			return err
		}
		files = files[1:]
	}
	return nil
}

// Scheduler runs a Backup on a cron schedule.
type Scheduler struct {
	backup *Backup
	cron   *cron.Cron
}

// NewScheduler parses spec (six fields, seconds first) and registers the job.
func NewScheduler(b *Backup, spec string) (*Scheduler, error) {
	c := cron.New(cron.WithSeconds())
	s := &Scheduler{backup: b, cron: c}

	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	path, err := s.backup.Run(ctx)
	if err != nil {
		logger.Error("scheduled backup failed", "err", err)
		return
	}
	logger.Info("scheduled backup written", "path", path)
}

// Start runs the scheduler until ctx is done, then waits for a running
// job to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron.Start()
	logger.Info("backup scheduler started", "dir", s.backup.dir)

	<-ctx.Done()
	<-s.cron.Stop().Done()
	logger.Info("backup scheduler stopped")
	return nil
}
