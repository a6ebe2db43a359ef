package media

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ProbeDuration returns the duration of a local video file in whole seconds.
func ProbeDuration(ctx context.Context, path string) (int, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	return parseProbeOutput(string(output))
}

func parseProbeOutput(output string) (int, error) {
	durationStr := strings.TrimSpace(output)
	durationFloat, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", durationStr, err)
	}

	duration := int(durationFloat)
	if duration < 0 {
		return 0, fmt.Errorf("invalid duration %d", duration)
	}
	return duration, nil
}
