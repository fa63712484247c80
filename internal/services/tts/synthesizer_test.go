package tts_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/zachdrouin/ComicAlive/internal/services/tts"
)

// writePCM16 builds a minimal WAV file, standing in for a real TTS binary's
// output.
func writePCM16(t *testing.T, path string, sampleRate, sampleCount int) {
	t.Helper()
	var buf bytes.Buffer
	dataLen := sampleCount * 2
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(make([]byte, dataLen))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write wav: %v", err)
	}
}

type scriptedExecutor struct {
	err     error
	onRun   func(outPath string)
	args    []string
	binarys []string
}

func (s *scriptedExecutor) Run(_ context.Context, binary string, args ...string) error {
	s.binarys = append(s.binarys, binary)
	s.args = args
	if s.err != nil {
		return s.err
	}
	if s.onRun != nil {
		// args[1] is the output path following -o.
		s.onRun(args[1])
	}
	return nil
}

func TestSynthesizeWithoutBinaryUsesTone(t *testing.T) {
	s := tts.New("", 0)
	out := filepath.Join(t.TempDir(), "panel.wav")

	res, err := s.Synthesize(context.Background(), tts.Request{Text: "pow bam boom"}, out)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !res.Fallback {
		t.Fatal("expected fallback tone without a binary")
	}
	// Three words at 0.1s per word.
	if math.Abs(res.Duration-0.3) > 0.01 {
		t.Fatalf("duration = %v, want ~0.3", res.Duration)
	}
	measured, err := tts.Duration(out)
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if math.Abs(measured-res.Duration) > 0.01 {
		t.Fatalf("file duration %v != reported %v", measured, res.Duration)
	}
}

func TestSynthesizeEmptyTextStillTones(t *testing.T) {
	s := tts.New("", 0)
	out := filepath.Join(t.TempDir(), "empty.wav")
	res, err := s.Synthesize(context.Background(), tts.Request{Text: ""}, out)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if math.Abs(res.Duration-0.1) > 0.01 {
		t.Fatalf("duration = %v, want one word minimum", res.Duration)
	}
}

func TestSynthesizeUsesBinaryOutput(t *testing.T) {
	exec := &scriptedExecutor{}
	exec.onRun = func(outPath string) {
		writePCM16(t, outPath, 22050, 44100) // two seconds
	}
	s := tts.New("speak", 0, tts.WithExecutor(exec))
	out := filepath.Join(t.TempDir(), "panel.wav")

	res, err := s.Synthesize(context.Background(), tts.Request{
		Text: "Look out below!", Voice: "en-US-Neural2-F", Pitch: -2, Rate: 1.5,
	}, out)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if res.Fallback {
		t.Fatal("binary output should not be marked fallback")
	}
	if math.Abs(res.Duration-2.0) > 0.01 {
		t.Fatalf("duration = %v, want 2.0", res.Duration)
	}
	for _, want := range []string{"-o", "--voice", "en-US-Neural2-F", "--pitch", "-2", "--rate", "1.5", "Look out below!"} {
		found := false
		for _, a := range exec.args {
			if a == want {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("args %v missing %q", exec.args, want)
		}
	}
}

func TestSynthesizeFallsBackOnExecFailure(t *testing.T) {
	exec := &scriptedExecutor{err: errors.New("no such voice")}
	s := tts.New("speak", 0, tts.WithExecutor(exec))
	out := filepath.Join(t.TempDir(), "panel.wav")

	res, err := s.Synthesize(context.Background(), tts.Request{Text: "one two"}, out)
	if err != nil {
		t.Fatalf("Synthesize should absorb exec failure, got %v", err)
	}
	if !res.Fallback {
		t.Fatal("expected fallback after exec failure")
	}
	if math.Abs(res.Duration-0.2) > 0.01 {
		t.Fatalf("duration = %v, want 0.2 for two words", res.Duration)
	}
}

func TestSynthesizeHonorsCancellation(t *testing.T) {
	s := tts.New("", 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Synthesize(ctx, tts.Request{Text: "x"}, filepath.Join(t.TempDir(), "x.wav")); err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestNextVoiceCycles(t *testing.T) {
	s := tts.New("", 0)
	want := []string{"en-US-Neural2-D", "en-US-Neural2-F", "en-US-Neural2-A", "en-US-Neural2-D"}
	for i, w := range want {
		if got := s.NextVoice(); got != w {
			t.Fatalf("voice %d = %q, want %q", i, got, w)
		}
	}
}

func TestWriteImpactEffect(t *testing.T) {
	out := filepath.Join(t.TempDir(), "impact.wav")
	duration, err := tts.WriteImpactEffect(out)
	if err != nil {
		t.Fatalf("WriteImpactEffect: %v", err)
	}
	if math.Abs(duration-0.25) > 1e-9 {
		t.Fatalf("duration = %v, want 0.25", duration)
	}
	measured, err := tts.Duration(out)
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if math.Abs(measured-duration) > 0.01 {
		t.Fatalf("file duration %v != reported %v", measured, duration)
	}
}

func TestWordCount(t *testing.T) {
	if got := tts.WordCount("  pow   bam\nboom "); got != 3 {
		t.Fatalf("WordCount = %d, want 3", got)
	}
	if got := tts.WordCount(""); got != 0 {
		t.Fatalf("WordCount empty = %d, want 0", got)
	}
}
