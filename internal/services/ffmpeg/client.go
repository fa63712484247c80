package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/zachdrouin/ComicAlive/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args ...string) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Settings describe the output format shared by every encode.
type Settings struct {
	Width   int
	Height  int
	Bitrate string
	Preset  string
	CRF     int
}

// Client wraps ffmpeg CLI interactions.
type Client struct {
	binary   string
	settings Settings
	exec     Executor
}

// New constructs an ffmpeg client.
func New(binary string, settings Settings, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	if settings.Width <= 0 || settings.Height <= 0 {
		return nil, fmt.Errorf("invalid output size %dx%d", settings.Width, settings.Height)
	}
	client := &Client{binary: binary, settings: settings, exec: commandExecutor{}}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// scaleFilter letterboxes arbitrary frame sizes into the output resolution.
func (c *Client) scaleFilter() string {
	w, h := c.settings.Width, c.settings.Height
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black",
		w, h, w, h,
	)
}

// RenderFrames encodes a concat-demuxer manifest of still frames into an
// H.264 clip at outPath.
func (c *Client) RenderFrames(ctx context.Context, manifestPath, outPath string) error {
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", manifestPath,
		"-vf", c.scaleFilter(),
		"-c:v", "libx264",
		"-preset", c.settings.Preset,
		"-crf", strconv.Itoa(c.settings.CRF),
		"-pix_fmt", "yuv420p",
	}
	if c.settings.Bitrate != "" {
		args = append(args, "-maxrate", c.settings.Bitrate, "-bufsize", c.settings.Bitrate)
	}
	args = append(args, outPath)

	if err := c.exec.Run(ctx, c.binary, args...); err != nil {
		return services.Wrap(services.ErrEncoding, "render", "encode frames", manifestPath, err)
	}
	return nil
}

// Mux attaches an audio track to a clip. The output stops with the shorter
// input, so a long narration never freezes the final frame.
func (c *Client) Mux(ctx context.Context, videoPath, audioPath, outPath string) error {
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outPath,
	}
	if err := c.exec.Run(ctx, c.binary, args...); err != nil {
		return services.Wrap(services.ErrEncoding, "render", "mux audio", videoPath, err)
	}
	return nil
}

// Concat stitches finished clips listed in a concat-demuxer file into the
// final video without re-encoding.
func (c *Client) Concat(ctx context.Context, listPath, outPath string) error {
	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	}
	if err := c.exec.Run(ctx, c.binary, args...); err != nil {
		return services.Wrap(services.ErrEncoding, "render", "concat clips", listPath, err)
	}
	return nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args ...string) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", binary, err, strings.TrimSpace(string(output)))
	}
	return nil
}
