package store

import (
	"context"

	"github.com/roomcheck/roomcheck/internal/inspection"
)

// MediaStore persists one analysis document and one normalized video per
// inspected clip, both keyed by the video's base name. Implementations must
// reject a duplicate base name atomically rather than overwrite.
type MediaStore interface {
	// SaveAnalysis persists the analysis document. A fault.KindConflict
	// error carrying the target name is returned when the name is taken.
	SaveAnalysis(ctx context.Context, base string, analysis *inspection.Analysis) error

	// SaveVideo stores the normalized video file for base.
	SaveVideo(ctx context.Context, base string, srcPath string) error

	// LoadAnalyses returns every persisted analysis. Entries that fail to
	// load are skipped, not fatal.
	LoadAnalyses(ctx context.Context) ([]inspection.Analysis, error)

	// AnalysisExists reports whether base already has a persisted analysis.
	AnalysisExists(ctx context.Context, base string) (bool, error)

	// Remove deletes the analysis document and stored video for base. A
	// fault.KindNotFound error is returned when base has no analysis.
	Remove(ctx context.Context, base string) error

	// VideoURL returns the playback URL the stored video will be served
	// under. Deterministic; valid before the video is written.
	VideoURL(base string) string
}

// AttachManual merges curated observations into each analysis by normalized
// title. Analyses without a matching entry get an empty list.
func AttachManual(analyses []inspection.Analysis, manual *inspection.ManualObservations) []inspection.Analysis {
	for i := range analyses {
		analyses[i].ManualObservations = manual.ForTitle(analyses[i].Title)
	}
	return analyses
}
