package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roomcheck/roomcheck/internal/fault"
	"github.com/roomcheck/roomcheck/internal/inspection"
)

// DiskStore keeps one <base>.json next to <base>.mp4 under dataDir/videos.
type DiskStore struct {
	videosDir string
}

func NewDiskStore(dataDir string) (*DiskStore, error) {
	videosDir := filepath.Join(dataDir, "videos")
	if err := os.MkdirAll(videosDir, 0o755); err != nil {
		return nil, fmt.Errorf("create videos dir %s: %w", videosDir, err)
	}
	return &DiskStore{videosDir: videosDir}, nil
}

// VideosDir is the directory stored videos are served from.
func (s *DiskStore) VideosDir() string {
	return s.videosDir
}

func (s *DiskStore) analysisPath(base string) string {
	return filepath.Join(s.videosDir, base+".json")
}

func (s *DiskStore) videoPath(base string) string {
	return filepath.Join(s.videosDir, base+".mp4")
}

func (s *DiskStore) VideoURL(base string) string {
	return "/videos/" + base + ".mp4"
}

// SaveAnalysis claims the base name with an exclusive create, so two uploads
// racing on the same name resolve to exactly one winner.
func (s *DiskStore) SaveAnalysis(ctx context.Context, base string, analysis *inspection.Analysis) error {
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis %s: %w", base, err)
	}

	f, err := os.OpenFile(s.analysisPath(base), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fault.Conflictf("a file with the name %s.mp4 already exists", base)
		}
		return fmt.Errorf("create analysis file %s: %w", base, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(s.analysisPath(base))
		return fmt.Errorf("write analysis file %s: %w", base, err)
	}
	return f.Close()
}

func (s *DiskStore) SaveVideo(ctx context.Context, base string, srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open transcoded video %s: %w", srcPath, err)
	}
	defer src.Close()

	dst, err := os.Create(s.videoPath(base))
	if err != nil {
		return fmt.Errorf("create stored video %s: %w", base, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(s.videoPath(base))
		return fmt.Errorf("copy video %s: %w", base, err)
	}
	return dst.Close()
}

func (s *DiskStore) AnalysisExists(ctx context.Context, base string) (bool, error) {
	_, err := os.Stat(s.analysisPath(base))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat analysis %s: %w", base, err)
}

// Remove deletes the analysis document and its stored video. The video removal
// is best effort; the document is the source of truth.
func (s *DiskStore) Remove(ctx context.Context, base string) error {
	if err := os.Remove(s.analysisPath(base)); err != nil {
		if os.IsNotExist(err) {
			return fault.NotFoundf("no analysis found for %s", base)
		}
		return fmt.Errorf("remove analysis %s: %w", base, err)
	}
	if err := os.Remove(s.videoPath(base)); err != nil && !os.IsNotExist(err) {
		slog.Warn("store: analysis removed but video remains", "base", base, "error", err)
	}
	return nil
}

// LoadAnalyses reads every persisted analysis, skipping entries that fail to
// load so one corrupt document cannot hide the rest.
func (s *DiskStore) LoadAnalyses(ctx context.Context) ([]inspection.Analysis, error) {
	entries, err := os.ReadDir(s.videosDir)
	if err != nil {
		return nil, fmt.Errorf("read videos dir: %w", err)
	}

	analyses := make([]inspection.Analysis, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.videosDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("store: skipping unreadable analysis", "path", path, "error", err)
			continue
		}
		var analysis inspection.Analysis
		if err := json.Unmarshal(data, &analysis); err != nil {
			slog.Warn("store: skipping corrupt analysis", "path", path, "error", err)
			continue
		}
		analyses = append(analyses, analysis)
	}
	return analyses, nil
}
