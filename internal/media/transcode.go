package media

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/roomcheck/roomcheck/internal/fault"
)

// buildTranscodeArgs produces the fixed normalization profile: H.264 without
// audio, baseline profile for broad playback compatibility, faststart for
// progressive streaming, and a speed-over-quality trade suited to short
// inspection clips.
func buildTranscodeArgs(inputPath, outputPath string) []string {
	return []string{
		"-i", inputPath,
		"-f", "mp4",
		"-c:v", "libx264",
		"-an",
		"-pix_fmt", "yuv420p",
		"-profile:v", "baseline",
		"-level", "3.0",
		"-movflags", "+faststart",
		"-preset", "ultrafast",
		"-crf", "28",
		"-vf", "scale=854:-2",
		"-y", outputPath,
	}
}

// TranscodeToMP4 normalizes an arbitrary input container to the constrained
// MP4 profile. A transcoding failure is fatal for the video being processed;
// the caller discards any partial output.
func TranscodeToMP4(ctx context.Context, inputPath, outputPath string) error {
	args := buildTranscodeArgs(inputPath, outputPath)
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fault.External("ffmpeg transcode failed", fmt.Errorf("%w: %s", err, string(output)))
	}
	return nil
}
