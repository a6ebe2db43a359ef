package maintenance

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// staleAfter is how old an abandoned temp file must be before it is purged.
// Temp files younger than this may still belong to an in-flight upload.
const staleAfter = time.Hour

// Runner performs scheduled housekeeping: purging abandoned temp files from
// failed transcodes and uploads, and flagging stored videos whose analysis
// document has gone missing.
type Runner struct {
	tmpDir    string
	videosDir string
	cron      *cron.Cron
}

func NewRunner(tmpDir, videosDir string) *Runner {
	return &Runner{
		tmpDir:    tmpDir,
		videosDir: videosDir,
		cron:      cron.New(),
	}
}

// Start schedules the housekeeping run. The schedule accepts cron expressions
// and @every syntax.
func (r *Runner) Start(schedule string) error {
	if _, err := r.cron.AddFunc(schedule, r.Run); err != nil {
		return err
	}
	r.cron.Start()
	slog.Info("maintenance: scheduled", "schedule", schedule)
	return nil
}

func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// Run executes one housekeeping pass.
func (r *Runner) Run() {
	purged := r.purgeTempFiles()
	orphans := r.countOrphanedVideos()
	slog.Info("maintenance: pass complete", "purged_temp_files", purged, "orphaned_videos", orphans)
}

func (r *Runner) purgeTempFiles() int {
	entries, err := os.ReadDir(r.tmpDir)
	if err != nil {
		slog.Warn("maintenance: cannot read tmp dir", "dir", r.tmpDir, "error", err)
		return 0
	}

	purged := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "roomcheck-") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if time.Since(info.ModTime()) < staleAfter {
			continue
		}
		path := filepath.Join(r.tmpDir, entry.Name())
		if err := os.Remove(path); err != nil {
			slog.Warn("maintenance: failed to remove temp file", "path", path, "error", err)
			continue
		}
		purged++
	}
	return purged
}

// countOrphanedVideos reports stored videos with no analysis document. They
// are logged, not deleted: the analysis store is the source of truth and an
// orphan means someone removed a document by hand.
func (r *Runner) countOrphanedVideos() int {
	if r.videosDir == "" {
		return 0
	}
	entries, err := os.ReadDir(r.videosDir)
	if err != nil {
		return 0
	}

	orphans := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".mp4") {
			continue
		}
		base := strings.TrimSuffix(name, ".mp4")
		if _, err := os.Stat(filepath.Join(r.videosDir, base+".json")); os.IsNotExist(err) {
			slog.Warn("maintenance: stored video has no analysis document", "video", name)
			orphans++
		}
	}
	return orphans
}
