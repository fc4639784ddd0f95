package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fairyhunter13/stockkeeper/internal/model"
	"github.com/fairyhunter13/stockkeeper/internal/obs"
)

// Snapshotter provides a consistent copy of the live state.
type Snapshotter interface {
	Snapshot() model.State
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Scheduler periodically writes backup files into a directory.
type Scheduler struct {
	src  Snapshotter
	dir  string
	loc  *time.Location
	now  func() time.Time
	cron *cron.Cron
}

// NewScheduler returns a scheduler writing into dir, naming files by the
// calendar day in loc.
func NewScheduler(src Snapshotter, dir string, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		src:  src,
		dir:  dir,
		loc:  loc,
		now:  time.Now,
		cron: cron.New(cron.WithLocation(loc), cron.WithParser(cronParser)),
	}
}

// Start registers schedule (a cron expression or a descriptor such as
// "@daily") and starts the cron runner.
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return fmt.Errorf("backup: schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	obs.Logger.Info("backup_scheduler_started", "schedule", schedule, "dir", s.dir)
	return nil
}

// Stop halts the runner and waits for a running backup to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	path, err := s.WriteNow()
	if err != nil {
		obs.Logger.Error("backup_write_failed", "error", err)
		return
	}
	obs.Logger.Info("backup_written", "path", path)
}

// WriteNow exports the current state to dir and returns the file path.
// A second backup on the same day overwrites the first.
func (s *Scheduler) WriteNow() (string, error) {
	doc, err := Export(s.src.Snapshot())
	if err != nil {
		return "", fmt.Errorf("backup: export: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("backup: mkdir %s: %w", s.dir, err)
	}
	path := filepath.Join(s.dir, FileName(model.DateKey(s.now().In(s.loc))))
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return "", fmt.Errorf("backup: write %s: %w", path, err)
	}
	return path, nil
}
