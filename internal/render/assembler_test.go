package render_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zachdrouin/ComicAlive/internal/project"
	"github.com/zachdrouin/ComicAlive/internal/render"
	"github.com/zachdrouin/ComicAlive/internal/services"
)

func TestFrameManifestRepeatsFinalFrame(t *testing.T) {
	got := render.FrameManifest([]string{"/w/f0.jpg", "/w/f1.jpg"}, 0.5)
	want := "file '/w/f0.jpg'\n" +
		"duration 0.500000\n" +
		"file '/w/f1.jpg'\n" +
		"duration 0.500000\n" +
		"file '/w/f1.jpg'\n"
	if got != want {
		t.Fatalf("manifest:\n%s\nwant:\n%s", got, want)
	}
}

func TestFrameManifestReproducible(t *testing.T) {
	frames := []string{"/a.jpg", "/b.jpg", "/c.jpg"}
	if render.FrameManifest(frames, 1.0/24) != render.FrameManifest(frames, 1.0/24) {
		t.Fatal("manifest not byte-reproducible for identical input")
	}
}

func TestFrameManifestEscapesQuotes(t *testing.T) {
	got := render.FrameManifest([]string{"/it's/f.jpg"}, 1)
	if !strings.Contains(got, `file '/it'\''s/f.jpg'`) {
		t.Fatalf("quote not escaped:\n%s", got)
	}
}

func TestConcatList(t *testing.T) {
	got := render.ConcatList([]string{"/w/s0.mp4", "/w/s1.mp4"})
	if got != "file '/w/s0.mp4'\nfile '/w/s1.mp4'\n" {
		t.Fatalf("concat list:\n%s", got)
	}
}

type fakeEncoder struct {
	failOn string
	ops    []string
	inputs []string
}

func (f *fakeEncoder) record(op, input string) error {
	f.ops = append(f.ops, op)
	f.inputs = append(f.inputs, input)
	if f.failOn == op {
		return services.Wrap(services.ErrEncoding, "render", op, input, errors.New("boom"))
	}
	return nil
}

func (f *fakeEncoder) RenderFrames(_ context.Context, manifestPath, _ string) error {
	return f.record("render", manifestPath)
}

func (f *fakeEncoder) Mux(_ context.Context, videoPath, audioPath, _ string) error {
	return f.record("mux", videoPath+"+"+audioPath)
}

func (f *fakeEncoder) Concat(_ context.Context, listPath, _ string) error {
	return f.record("concat", listPath)
}

func segments() []project.Segment {
	return []project.Segment{
		{
			OrderIndex: 0,
			Clip: project.AnimationClip{
				Kind: project.ClipPanScan, Frames: []string{"/w/p0/frame_0000.jpg"}, FrameDuration: 2.5,
			},
		},
		{
			OrderIndex: 1,
			Clip: project.AnimationClip{
				Kind: project.ClipTransition, Frames: []string{"/w/t1/frame_0000.jpg"}, FrameDuration: 0.5,
			},
		},
		{
			OrderIndex: 2,
			Clip: project.AnimationClip{
				Kind: project.ClipKenBurns, Frames: []string{"/w/p1/frame_0000.jpg"}, FrameDuration: 2.5,
			},
			Audio: &project.AudioClip{Path: "/w/audio/panel_1.wav", Duration: 1.2},
		},
	}
}

func TestAssembleOrdersOperations(t *testing.T) {
	enc := &fakeEncoder{}
	clipsDir := t.TempDir()
	out := filepath.Join(t.TempDir(), "final.mp4")

	err := render.NewAssembler(enc, nil).Assemble(context.Background(), segments(), clipsDir, out)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	want := []string{"render", "render", "render", "mux", "concat"}
	if len(enc.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", enc.ops, want)
	}
	// Only the audio-bearing segment muxes, and concat comes last.
	if enc.ops[len(enc.ops)-1] != "concat" {
		t.Fatalf("ops = %v, concat must be last", enc.ops)
	}
	muxes := 0
	for _, op := range enc.ops {
		if op == "mux" {
			muxes++
		}
	}
	if muxes != 1 {
		t.Fatalf("expected exactly 1 mux, ops = %v", enc.ops)
	}

	list, err := os.ReadFile(filepath.Join(clipsDir, "segments.txt"))
	if err != nil {
		t.Fatalf("read concat list: %v", err)
	}
	text := string(list)
	for _, clip := range []string{"segment_000.mp4", "segment_001.mp4", "segment_002_audio.mp4"} {
		if !strings.Contains(text, clip) {
			t.Fatalf("concat list missing %s:\n%s", clip, text)
		}
	}
	if strings.Index(text, "segment_000.mp4") > strings.Index(text, "segment_001.mp4") {
		t.Fatalf("segments out of order:\n%s", text)
	}

	manifest, err := os.ReadFile(filepath.Join(clipsDir, "segment_000.txt"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if string(manifest) != render.FrameManifest(segments()[0].Clip.Frames, 2.5) {
		t.Fatalf("manifest content mismatch:\n%s", manifest)
	}
}

func TestAssembleEmptyIsEmptyInput(t *testing.T) {
	err := render.NewAssembler(&fakeEncoder{}, nil).
		Assemble(context.Background(), nil, t.TempDir(), "out.mp4")
	if !errors.Is(err, services.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestAssemblePropagatesEncoderFailure(t *testing.T) {
	enc := &fakeEncoder{failOn: "render"}
	err := render.NewAssembler(enc, nil).
		Assemble(context.Background(), segments(), t.TempDir(), "out.mp4")
	if !errors.Is(err, services.ErrEncoding) {
		t.Fatalf("expected ErrEncoding, got %v", err)
	}
}
