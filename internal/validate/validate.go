package validate

import "fmt"

// Upload and text limits — single source of truth for every call site. The
// inline limit is the ceiling for inlining video bytes into an AI request;
// anything larger goes through the file-upload path.
const (
	MaxUploadBytes      = int64(100 * 1024 * 1024)
	MaxInlineVideoBytes = int64(20 * 1024 * 1024)

	MaxTitleLength                = 200
	MaxChecklistTitleLength       = 200
	MaxChecklistDescriptionLength = 1000
	MaxChecklistItems             = 50
)

var videoContentTypes = map[string]string{
	"video/mp4":       ".mp4",
	"video/quicktime": ".mov",
	"video/webm":      ".webm",
	"video/x-msvideo": ".avi",
	"video/mpeg":      ".mpeg",
	"video/3gpp":      ".3gp",
}

// VideoContentType reports whether ct is a video type the AI service accepts.
func VideoContentType(ct string) bool {
	_, ok := videoContentTypes[ct]
	return ok
}

// ExtensionForContentType returns the file extension for a supported video
// type, defaulting to .mp4.
func ExtensionForContentType(ct string) string {
	if ext, ok := videoContentTypes[ct]; ok {
		return ext
	}
	return ".mp4"
}

// UploadSize returns a rejection message for oversized payloads, or "".
func UploadSize(size int64) string {
	if size > MaxUploadBytes {
		return fmt.Sprintf("file size %d exceeds limit of %d bytes", size, MaxUploadBytes)
	}
	return ""
}

func checkLen(value string, max int, field string) string {
	if len(value) > max {
		return fmt.Sprintf("%s must be %d characters or fewer", field, max)
	}
	return ""
}

func Title(s string) string { return checkLen(s, MaxTitleLength, "title") }
func ChecklistTitle(s string) string {
	return checkLen(s, MaxChecklistTitleLength, "checklist title")
}
func ChecklistDescription(s string) string {
	return checkLen(s, MaxChecklistDescriptionLength, "checklist description")
}
