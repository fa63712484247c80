package render

import (
	"strconv"
	"strings"
)

// FrameManifest renders the concat-demuxer body for a clip's frames. Every
// frame is listed with its display duration; the final frame is repeated
// once without a duration, which the demuxer requires to honor the last
// entry's timing.
func FrameManifest(frames []string, frameDuration float64) string {
	var b strings.Builder
	duration := strconv.FormatFloat(frameDuration, 'f', 6, 64)
	for _, frame := range frames {
		b.WriteString("file '")
		b.WriteString(escapePath(frame))
		b.WriteString("'\nduration ")
		b.WriteString(duration)
		b.WriteString("\n")
	}
	if len(frames) > 0 {
		b.WriteString("file '")
		b.WriteString(escapePath(frames[len(frames)-1]))
		b.WriteString("'\n")
	}
	return b.String()
}

// ConcatList renders the concat-demuxer body for finished segment clips.
func ConcatList(paths []string) string {
	var b strings.Builder
	for _, path := range paths {
		b.WriteString("file '")
		b.WriteString(escapePath(path))
		b.WriteString("'\n")
	}
	return b.String()
}

// escapePath quotes single quotes the way the concat demuxer expects.
func escapePath(path string) string {
	return strings.ReplaceAll(path, "'", `'\''`)
}
