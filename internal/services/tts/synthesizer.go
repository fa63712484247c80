package tts

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/zachdrouin/ComicAlive/internal/services"
)

// VoiceMixed requests a different voice per speech bubble, drawn round-robin
// from the voice pool.
const VoiceMixed = "mixed"

// voicePool backs the mixed voice mode.
var voicePool = []string{"en-US-Neural2-D", "en-US-Neural2-F", "en-US-Neural2-A"}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args ...string) error
}

// Option configures the synthesizer.
type Option func(*Synthesizer)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(s *Synthesizer) {
		if exec != nil {
			s.exec = exec
		}
	}
}

// Request describes one synthesis job.
type Request struct {
	Text  string
	Voice string
	Pitch float64 // semitones, [-20, 20]
	Rate  float64 // speaking rate multiplier
}

// Result reports where the audio landed and how long it plays.
type Result struct {
	Path     string
	Duration float64 // seconds
	Fallback bool    // true when the placeholder tone was used
}

// Synthesizer shells out to a TTS binary, throttled so cloud-backed tools
// stay under their quota. An empty binary name, or any synthesis failure,
// degrades to the placeholder tone instead of failing the pipeline.
type Synthesizer struct {
	binary  string
	limiter *rate.Limiter
	exec    Executor

	mu       sync.Mutex
	voiceIdx int
}

// New constructs a synthesizer. perMinute caps synthesis calls; zero or
// negative disables throttling.
func New(binary string, perMinute int, opts ...Option) *Synthesizer {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
	s := &Synthesizer{
		binary:  strings.TrimSpace(binary),
		limiter: limiter,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextVoice returns the next voice from the pool, cycling for mixed mode.
func (s *Synthesizer) NextVoice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	voice := voicePool[s.voiceIdx%len(voicePool)]
	s.voiceIdx++
	return voice
}

// Synthesize renders req.Text to a WAV file at outPath. Synthesis failures
// are absorbed by the fallback tone; the returned error is non-nil only when
// even the fallback cannot be written (wrapped as recoverable ErrSynthesis)
// or the context ends.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request, outPath string) (Result, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	if s.binary != "" {
		if err := s.exec.Run(ctx, s.binary, s.args(req, outPath)...); err == nil {
			if duration, derr := Duration(outPath); derr == nil {
				return Result{Path: outPath, Duration: duration}, nil
			}
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
	}

	duration, err := writeFallbackTone(outPath, req.Text)
	if err != nil {
		return Result{}, services.Wrap(services.ErrSynthesis, "narrate", "fallback tone", outPath, err)
	}
	return Result{Path: outPath, Duration: duration, Fallback: true}, nil
}

func (s *Synthesizer) args(req Request, outPath string) []string {
	args := []string{"-o", outPath}
	if req.Voice != "" && req.Voice != VoiceMixed {
		args = append(args, "--voice", req.Voice)
	}
	if req.Pitch != 0 {
		args = append(args, "--pitch", strconv.FormatFloat(req.Pitch, 'f', -1, 64))
	}
	if req.Rate != 0 && req.Rate != 1 {
		args = append(args, "--rate", strconv.FormatFloat(req.Rate, 'f', -1, 64))
	}
	return append(args, req.Text)
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
