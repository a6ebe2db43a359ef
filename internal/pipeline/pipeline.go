package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/roomcheck/roomcheck/internal/fault"
	"github.com/roomcheck/roomcheck/internal/inspection"
	"github.com/roomcheck/roomcheck/internal/media"
	"github.com/roomcheck/roomcheck/internal/store"
	"github.com/roomcheck/roomcheck/internal/validate"
)

// Analyzer is the slice of the AI client the pipeline needs.
type Analyzer interface {
	AnalyzeVideo(ctx context.Context, data []byte, contentType string) ([]inspection.Observation, error)
}

// Transcoder normalizes an input video to the stored MP4 profile.
type Transcoder func(ctx context.Context, inputPath, outputPath string) error

// Prober returns a video file's duration in seconds.
type Prober func(ctx context.Context, path string) (int, error)

// Pipeline runs one video through validation, normalization, AI analysis and
// persistence.
type Pipeline struct {
	ai        Analyzer
	store     store.MediaStore
	transcode Transcoder
	probe     Prober
	tmpDir    string
}

func New(ai Analyzer, mediaStore store.MediaStore, tmpDir string) *Pipeline {
	return &Pipeline{
		ai:        ai,
		store:     mediaStore,
		transcode: media.TranscodeToMP4,
		probe:     media.ProbeDuration,
		tmpDir:    tmpDir,
	}
}

// SetTranscoder and SetProber let tests substitute the external tools.
func (p *Pipeline) SetTranscoder(t Transcoder) { p.transcode = t }
func (p *Pipeline) SetProber(pr Prober)        { p.probe = pr }

type Request struct {
	Filename    string
	ContentType string
	Data        []byte
	// SkipFiles analyzes the raw bytes directly without transcoding or
	// persisting anything.
	SkipFiles bool
}

// Process runs the full round trip for one video and returns the analysis.
// With SkipFiles the result is ephemeral; otherwise it is persisted under the
// video's base name, and a duplicate name is rejected without overwriting.
func (p *Pipeline) Process(ctx context.Context, req Request) (*inspection.Analysis, error) {
	if len(req.Data) == 0 {
		return nil, fault.Validationf("no video file provided")
	}
	if !validate.VideoContentType(req.ContentType) {
		return nil, fault.Validationf("unsupported video type %q", req.ContentType)
	}
	if msg := validate.UploadSize(int64(len(req.Data))); msg != "" {
		return nil, fault.Validationf("%s", msg)
	}

	base := BaseName(req.Filename)
	if base == "" {
		return nil, fault.Validationf("invalid filename %q", req.Filename)
	}
	if msg := validate.Title(base); msg != "" {
		return nil, fault.Validationf("%s", msg)
	}

	if req.SkipFiles {
		observations, err := p.ai.AnalyzeVideo(ctx, req.Data, req.ContentType)
		if err != nil {
			return nil, err
		}
		return &inspection.Analysis{
			ID:           uuid.NewString(),
			Title:        base,
			Observations: observations,
			Summary:      inspection.Summarize(observations),
		}, nil
	}

	// Fast-path rejection before the expensive work. The exclusive create in
	// SaveAnalysis below is the authoritative duplicate check.
	exists, err := p.store.AnalysisExists(ctx, base)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fault.Conflictf("a file with the name %s.mp4 already exists", base)
	}

	original, err := os.CreateTemp(p.tmpDir, "roomcheck-original-*"+validate.ExtensionForContentType(req.ContentType))
	if err != nil {
		return nil, fmt.Errorf("create temp original: %w", err)
	}
	originalPath := original.Name()
	defer func() { _ = os.Remove(originalPath) }()

	if _, err := original.Write(req.Data); err != nil {
		_ = original.Close()
		return nil, fmt.Errorf("write temp original: %w", err)
	}
	if err := original.Close(); err != nil {
		return nil, fmt.Errorf("close temp original: %w", err)
	}

	normalized, err := os.CreateTemp(p.tmpDir, "roomcheck-normalized-*.mp4")
	if err != nil {
		return nil, fmt.Errorf("create temp output: %w", err)
	}
	normalizedPath := normalized.Name()
	_ = normalized.Close()
	defer func() { _ = os.Remove(normalizedPath) }()

	if err := p.transcode(ctx, originalPath, normalizedPath); err != nil {
		return nil, err
	}

	duration := ""
	if seconds, err := p.probe(ctx, normalizedPath); err != nil {
		slog.Warn("pipeline: duration probe failed", "base", base, "error", err)
	} else {
		duration = inspection.FormatTimestamp(seconds)
	}

	normalizedData, err := os.ReadFile(normalizedPath)
	if err != nil {
		return nil, fmt.Errorf("read transcoded video: %w", err)
	}

	observations, err := p.ai.AnalyzeVideo(ctx, normalizedData, "video/mp4")
	if err != nil {
		return nil, err
	}

	analysis := &inspection.Analysis{
		ID:           uuid.NewString(),
		Title:        base,
		VideoURL:     p.store.VideoURL(base),
		Observations: observations,
		Summary:      inspection.Summarize(observations),
		Duration:     duration,
	}

	if err := p.store.SaveAnalysis(ctx, base, analysis); err != nil {
		return nil, err
	}
	if err := p.store.SaveVideo(ctx, base, normalizedPath); err != nil {
		// Release the claimed name, or every retry of this upload would be
		// rejected as a duplicate of an analysis with no video.
		if rmErr := p.store.Remove(ctx, base); rmErr != nil {
			slog.Warn("pipeline: failed to release claimed name", "base", base, "error", rmErr)
		}
		return nil, err
	}

	slog.Info("pipeline: video processed", "base", base, "observations", len(observations), "duration", duration)
	return analysis, nil
}

// BaseName strips the extension and any path components from an uploaded
// filename. The result is the storage key and display title.
func BaseName(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == ' ', r == '.':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "." || base == ".." {
		return ""
	}
	return strings.TrimSpace(base)
}
